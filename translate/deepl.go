package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var errNoTranslation = errors.New("response contains no translation")

type deeplRequest struct {
	Text        []string `json:"text"`
	TargetLang  string   `json:"target_lang"`
	SourceLang  string   `json:"source_lang,omitempty"`
	TagHandling string   `json:"tag_handling"`
	Context     string   `json:"context,omitempty"`
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

type deeplError struct {
	Message string `json:"message"`
}

// DeepL calls the DeepL v2 translate endpoint.
type DeepL struct {
	endpoint string
	http     *resty.Client
}

// NewDeepL returns a DeepL translator. A zero timeout leaves the deadline to
// the caller's context.
func NewDeepL(prov Provider, timeout time.Duration) *DeepL {
	c := resty.New().
		SetHeader("Authorization", "DeepL-Auth-Key "+prov.APIKey).
		SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &DeepL{endpoint: prov.BaseURL, http: c}
}

// Translate sends one string. HTML markup is preserved by the service.
func (d *DeepL) Translate(ctx context.Context, req Request) (string, error) {
	body := deeplRequest{
		Text:        []string{req.Text},
		TargetLang:  strings.ToUpper(req.TargetLang),
		SourceLang:  req.SourceLang,
		TagHandling: "html",
		Context:     req.Context,
	}

	resp, err := d.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(d.endpoint)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	if !resp.IsSuccess() {
		msg := strings.TrimSpace(resp.String())
		var de deeplError
		if json.Unmarshal(resp.Body(), &de) == nil && de.Message != "" {
			msg = de.Message
		}
		return "", &StatusError{Code: resp.StatusCode(), Message: truncate(msg, 500)}
	}

	var out deeplResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decoding DeepL response: %w", err)
	}
	if len(out.Translations) == 0 {
		return "", errNoTranslation
	}
	return out.Translations[0].Text, nil
}
