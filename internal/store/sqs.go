// Where: internal/store/sqs.go
// What: SQS-backed queue store adapter.
// Why: Queue seeding is the third symmetric target of the lifecycle contract;
// records go out as JSON message bodies.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/seedbox-dev/seedbox/internal/ensure"
	"github.com/seedbox-dev/seedbox/internal/importer"
	"github.com/seedbox-dev/seedbox/internal/record"
	"github.com/seedbox-dev/seedbox/internal/resolver"
)

// SQSQueueStore implements ensure.QueueStore and importer.ItemWriter against
// an SQS-compatible endpoint.
type SQSQueueStore struct {
	client *sqs.Client

	mu   sync.Mutex
	urls map[string]string
}

var (
	_ ensure.QueueStore   = (*SQSQueueStore)(nil)
	_ importer.ItemWriter = (*SQSQueueStore)(nil)
)

// NewSQSQueueStore builds the adapter for one resolved target.
func NewSQSQueueStore(target resolver.ConnectionTarget) *SQSQueueStore {
	client := sqs.NewFromConfig(target.Config, func(options *sqs.Options) {
		if target.Endpoint != "" {
			options.BaseEndpoint = aws.String(target.Endpoint)
		}
	})
	return &SQSQueueStore{client: client, urls: map[string]string{}}
}

// ListQueues returns the names of existing queues.
func (s *SQSQueueStore) ListQueues(ctx context.Context) ([]string, error) {
	var names []string
	paginator := sqs.NewListQueuesPaginator(s.client, &sqs.ListQueuesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, queueURL := range page.QueueUrls {
			names = append(names, queueNameFromURL(queueURL))
		}
	}
	return names, nil
}

// CreateQueue creates a queue, tolerating creations that lost a race.
func (s *SQSQueueStore) CreateQueue(ctx context.Context, name string) error {
	resp, err := s.client.CreateQueue(ctx, &sqs.CreateQueueInput{QueueName: aws.String(name)})
	if err != nil {
		var exists *sqstypes.QueueNameExists
		if errors.As(err, &exists) {
			return fmt.Errorf("queue %s: %w", name, ensure.ErrAlreadyExists)
		}
		return err
	}
	if resp.QueueUrl != nil {
		s.mu.Lock()
		s.urls[name] = *resp.QueueUrl
		s.mu.Unlock()
	}
	return nil
}

// WriteItem sends the record as one JSON message.
func (s *SQSQueueStore) WriteItem(ctx context.Context, ns ensure.NamespaceHandle, rec record.DomainRecord) error {
	queueURL, err := s.queueURL(ctx, ns.Container)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}
	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(payload)),
	})
	return err
}

func (s *SQSQueueStore) queueURL(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	cached, ok := s.urls[name]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	resp, err := s.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(name)})
	if err != nil {
		return "", fmt.Errorf("resolve queue url for %s: %w", name, err)
	}
	s.mu.Lock()
	s.urls[name] = *resp.QueueUrl
	s.mu.Unlock()
	return *resp.QueueUrl, nil
}

func queueNameFromURL(queueURL string) string {
	return path.Base(queueURL)
}
