package feeds

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const azureAPIVersion = "2020-10-02"

// AzureStore uploads feed blobs as block blobs. It implements just the
// Put Blob call with shared key signing, which is all the pipeline
// needs.
type AzureStore struct {
	account   string
	container string
	key       []byte
	client    *resty.Client
	// overridable in tests
	now func() time.Time
}

type AzureConfig struct {
	AccountName string `json:"account_name"`
	AccountKey  string `json:"account_key"`
	Container   string `json:"container"`
}

func (c AzureConfig) Enabled() bool {
	return c.AccountName != "" && c.AccountKey != "" && c.Container != ""
}

func NewAzureStore(config AzureConfig) (*AzureStore, error) {
	key, err := base64.StdEncoding.DecodeString(config.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("decode account key: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(fmt.Sprintf("https://%s.blob.core.windows.net", config.AccountName))
	client.SetTimeout(time.Second * 60)

	return &AzureStore{
		account:   config.AccountName,
		container: config.Container,
		key:       key,
		client:    client,
		now:       time.Now,
	}, nil
}

func (s *AzureStore) Put(ctx context.Context, blobPath string, contents []byte) error {
	date := s.now().UTC().Format(time.RFC1123)
	// RFC1123 renders "UTC", the signature scheme wants "GMT"
	date = strings.Replace(date, "UTC", "GMT", 1)

	headers := map[string]string{
		"x-ms-blob-type": "BlockBlob",
		"x-ms-date":      date,
		"x-ms-version":   azureAPIVersion,
		"content-type":   "application/json",
	}

	resource := fmt.Sprintf("/%s/%s", s.container, blobPath)
	signature := s.sign(stringToSign(
		"PUT",
		len(contents),
		headers,
		fmt.Sprintf("/%s%s", s.account, resource),
	))

	res, err := s.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetHeader("authorization", fmt.Sprintf("SharedKey %s:%s", s.account, signature)).
		SetBody(contents).
		Put(resource)
	if err != nil {
		return err
	}
	if res.StatusCode() != 201 {
		return fmt.Errorf("put blob %q: %s: %s", blobPath, res.Status(), res.String())
	}
	return nil
}

func (s *AzureStore) sign(toSign string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(toSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// stringToSign builds the shared key signature input per the storage
// service's canonicalization rules. Only the header subset this client
// actually sends is handled.
func stringToSign(verb string, contentLength int, headers map[string]string, canonicalResource string) string {
	lengthStr := ""
	if contentLength > 0 {
		lengthStr = fmt.Sprint(contentLength)
	}

	msHeaders := []string{}
	for k, v := range headers {
		if strings.HasPrefix(k, "x-ms-") {
			msHeaders = append(msHeaders, fmt.Sprintf("%s:%s", k, v))
		}
	}
	sort.Strings(msHeaders)

	return strings.Join([]string{
		verb,
		"", // Content-Encoding
		"", // Content-Language
		lengthStr,
		"", // Content-MD5
		headers["content-type"],
		"", // Date (x-ms-date is used instead)
		"", // If-Modified-Since
		"", // If-Match
		"", // If-None-Match
		"", // If-Unmodified-Since
		"", // Range
		strings.Join(msHeaders, "\n"),
		canonicalResource,
	}, "\n")
}
