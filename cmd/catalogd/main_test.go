package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/gagliardetto/solana-go"
	"github.com/pikavault/pikavault-go/internal/catalog"
	"github.com/pikavault/pikavault-go/internal/entity"
	"github.com/pikavault/pikavault-go/internal/messenger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndexer struct {
	indexed []solana.PublicKey
	err     error
}

func (s *stubIndexer) ReindexAll(ctx context.Context) (int, error) {
	return 0, nil
}

func (s *stubIndexer) IndexListing(ctx context.Context, address solana.PublicKey) error {
	if s.err != nil {
		return s.err
	}

	s.indexed = append(s.indexed, address)
	return nil
}

func (s *stubIndexer) Search(ctx context.Context, query catalog.Query) ([]entity.CatalogRow, error) {
	return nil, nil
}

type stubQueue struct {
	deleted int
}

func (s *stubQueue) SendMessage(item messenger.Item, body []byte) error {
	return nil
}

func (s *stubQueue) PollMessages(item messenger.Item, messages chan<- *sqs.Message) {}

func (s *stubQueue) DeleteMessage(item messenger.Item, msg *sqs.Message) error {
	s.deleted++
	return nil
}

func refreshMessage(t *testing.T, address solana.PublicKey) *sqs.Message {
	t.Helper()

	return &sqs.Message{Body: aws.String(fmt.Sprintf(`{"address":"%s"}`, address))}
}

func TestProcessRefresh(t *testing.T) {
	indexer := &stubIndexer{}
	queue := &stubQueue{}

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	address := key.PublicKey()

	processRefresh(indexer, queue, refreshMessage(t, address))

	require.Len(t, indexer.indexed, 1)
	assert.Equal(t, address, indexer.indexed[0])
	assert.Equal(t, 1, queue.deleted)
}

func TestProcessRefresh_IndexFailure_KeepsMessage(t *testing.T) {
	indexer := &stubIndexer{err: errors.New("es unavailable")}
	queue := &stubQueue{}

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	processRefresh(indexer, queue, refreshMessage(t, key.PublicKey()))

	// The message stays in the queue for redelivery.
	assert.Equal(t, 0, queue.deleted)
}

func TestProcessRefresh_MalformedPayload_Acknowledged(t *testing.T) {
	indexer := &stubIndexer{}
	queue := &stubQueue{}

	processRefresh(indexer, queue, &sqs.Message{Body: aws.String("not json")})
	processRefresh(indexer, queue, &sqs.Message{Body: aws.String(`{"address":"not-a-key"}`)})

	assert.Empty(t, indexer.indexed)
	assert.Equal(t, 2, queue.deleted)
}
