// Package ipfs pins card images to IPFS through Pinata and returns a durable
// gateway URL for the pinned content.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pikavault/pikavault-go/internal/config"
	"github.com/pikavault/pikavault-go/internal/log"
	"go.uber.org/zap"
)

const pinFileUrl = "https://api.pinata.cloud/pinning/pinFileToIPFS"

type Pinata struct {
	client  *retryablehttp.Client
	jwt     string
	gateway string
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

func NewPinata(cfg config.PinataConfig) *Pinata {
	client := retryablehttp.NewClient()
	client.Logger = log.NewClientLogger()
	client.RetryMax = 3
	client.HTTPClient.Timeout = time.Duration(cfg.Timeout) * time.Second

	return &Pinata{client: client, jwt: cfg.Jwt, gateway: cfg.Gateway}
}

// Store pins raw bytes and returns the gateway URL. The name only labels the
// pin in Pinata; the URL is content addressed.
func (p *Pinata) Store(ctx context.Context, name string, data []byte) (string, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}

	options, _ := json.Marshal(map[string]interface{}{"cidVersion": 1})
	metadata, _ := json.Marshal(map[string]interface{}{"name": fmt.Sprintf("PikaVault-%d", time.Now().UnixMilli())})
	_ = writer.WriteField("pinataOptions", string(options))
	_ = writer.WriteField("pinataMetadata", string(metadata))

	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := retryablehttp.NewRequest("POST", pinFileUrl, body)
	if err != nil {
		return "", err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+p.jwt)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("pinata upload failed: %s", resp.Status)
	}

	var pinned pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pinned); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s", p.gateway, pinned.IpfsHash)
	zap.L().With(zap.String("hash", pinned.IpfsHash), zap.String("url", url)).Info("Pinata: file pinned")

	return url, nil
}
