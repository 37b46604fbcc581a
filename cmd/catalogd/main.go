package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/gagliardetto/solana-go"
	"github.com/pikavault/pikavault-go/internal/catalog"
	"github.com/pikavault/pikavault-go/internal/config"
	"github.com/pikavault/pikavault-go/internal/dic"
	"github.com/pikavault/pikavault-go/internal/messenger"
	"go.uber.org/zap"
)

var container *dic.Container

func main() {
	config.Init("catalogd")

	var err error
	container, err = dic.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	if err := container.GetElastic().InstallMappings(); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to install mappings")
	}

	if _, err := container.GetCatalogIndexer().ReindexAll(context.Background()); err != nil {
		zap.L().With(zap.Error(err)).Error("Initial reindex failed")
	}

	if config.Get().Aws.Region != "" {
		go pollCatalogRefresh()
	}

	server := catalog.NewServer(container.GetCatalog(), container.GetCatalogIndexer(), container.GetListingRepo())

	zap.L().With(zap.String("port", config.Get().CatalogPort)).Info("Catalogd started")

	if err := http.ListenAndServe(":"+config.Get().CatalogPort, server.Router()); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start catalogd")
	}
}

func pollCatalogRefresh() {
	zap.L().Info("Subscribing to catalog refresh")

	messages := make(chan *sqs.Message, 10)
	go container.GetMessenger().PollMessages(messenger.CatalogRefresh, messages)

	for message := range messages {
		processRefresh(container.GetCatalogIndexer(), container.GetMessenger(), message)
	}
}

// processRefresh indexes the listing a message names and acknowledges it.
// A transient index failure leaves the message in the queue so SQS
// redelivers it; a malformed payload is acknowledged, it would never
// succeed.
func processRefresh(indexer catalog.Indexer, queue messenger.MessageService, message *sqs.Message) {
	var data messenger.Listing
	if err := json.Unmarshal([]byte(*message.Body), &data); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to read message")
		acknowledge(queue, message)
		return
	}

	address, err := solana.PublicKeyFromBase58(data.Address)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("address", data.Address)).Error("Invalid listing address")
		acknowledge(queue, message)
		return
	}

	if err := indexer.IndexListing(context.Background(), address); err != nil {
		zap.L().With(zap.Error(err), zap.String("address", data.Address)).Error("Catalog refresh failed")
		return
	}

	zap.L().With(zap.String("address", data.Address)).Info("Catalog refresh success")
	acknowledge(queue, message)
}

func acknowledge(queue messenger.MessageService, message *sqs.Message) {
	if err := queue.DeleteMessage(messenger.CatalogRefresh, message); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to delete message")
	}
}
