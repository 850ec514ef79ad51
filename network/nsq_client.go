package network

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/storagestats/gcs-stats/models/service"
)

// NSQClientInterface is formally defined so we can mock it in tests.
type NSQClientInterface interface {
	EnqueueObject(topic, objectID string) error
}

// NSQClient publishes storage notifications to nsqd over its HTTP
// interface. It has write access only. The workers do the reading.
type NSQClient struct {
	URL        string
	httpClient *http.Client
}

// NewNSQClient returns a client that posts to the nsqd HTTP address at
// url, which usually ends with :4151.
func NewNSQClient(url string) *NSQClient {
	return &NSQClient{
		URL:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// EnqueueObject publishes a storage notification for objectID to
// topic, in the same shape the bucket notification service sends.
func (client *NSQClient) EnqueueObject(topic, objectID string) error {
	data, err := service.NewNotification(objectID).ToJSON()
	if err != nil {
		return err
	}
	return client.publish(topic, data)
}

func (client *NSQClient) publish(topic string, data []byte) error {
	pubURL := fmt.Sprintf("%s/pub?topic=%s", client.URL, url.QueryEscape(topic))
	resp, err := client.httpClient.Post(pubURL, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("Nsqd returned an error when queuing data: %v", err)
	}

	// nsqd sends a simple OK. We have to read the response body,
	// or the connection will hang open forever.
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyText := "[no response body]"
		if len(body) > 0 {
			bodyText = string(body)
		}
		return fmt.Errorf("nsqd returned status code %d when attempting to queue data. "+
			"Response body: %s", resp.StatusCode, bodyText)
	}
	return nil
}
