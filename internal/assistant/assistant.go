// Package assistant implements the BarGPT chat collaborator: it wraps a
// free-text staff query in a system prompt describing the current menu
// and floor state and forwards it to the hosted Gemini completion
// endpoint.
//
// The assistant is advisory text, never transactional data. It reads a
// consistent snapshot of tabs and menu at call time and degrades every
// failure to a fixed localized string instead of returning an error.
package assistant

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/xenking/bartab/internal/domain/product"
	"github.com/xenking/bartab/internal/domain/tab"
)

// Fixed user-visible replies. Failures never propagate past Ask.
const (
	ReplyNoAPIKey    = "Erro: Chave de API não configurada."
	ReplyUnavailable = "Ocorreu um erro ao conectar com o assistente inteligente."
	ReplyEmpty       = "Desculpe, não consegui processar sua solicitação no momento."
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash"
	temperature    = 0.7
)

// Config holds the assistant's connection settings.
type Config struct {
	// APIKey authenticates against the generative language API. When
	// empty, every query answers with ReplyNoAPIKey.
	APIKey string
	// Model is the completion model name. Defaults to gemini-2.5-flash.
	Model string
	// BaseURL overrides the API host, mainly for tests.
	BaseURL string
	// Client is the HTTP client to use. Defaults to an instrumented
	// client with a 30s timeout.
	Client *http.Client
}

// Assistant forwards staff queries to the completion endpoint.
type Assistant struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// New creates an Assistant from cfg, applying defaults for unset fields.
func New(cfg Config) *Assistant {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Assistant{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  cfg.Client,
	}
}

// Ask sends the query with a system prompt built from the menu and the
// given tabs. It always returns displayable text: transport, auth and
// decode failures are logged and mapped to the fixed reply strings.
func (a *Assistant) Ask(ctx context.Context, query string, menu []product.Product, tabs []tab.Tab) string {
	if a.apiKey == "" {
		return ReplyNoAPIKey
	}

	body := encodeRequest(systemPrompt(menu, tabs), query)
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", a.baseURL, a.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		zctx.From(ctx).Error("Assistant request build failed", zap.Error(err))
		return ReplyUnavailable
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		zctx.From(ctx).Error("Assistant request failed", zap.Error(err))
		return ReplyUnavailable
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		zctx.From(ctx).Error("Assistant response read failed", zap.Error(err))
		return ReplyUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		zctx.From(ctx).Error("Assistant endpoint returned error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", data),
		)
		return ReplyUnavailable
	}

	text, err := decodeResponse(data)
	if err != nil {
		zctx.From(ctx).Error("Assistant response decode failed", zap.Error(err))
		return ReplyUnavailable
	}
	if text == "" {
		return ReplyEmpty
	}
	return text
}

// systemPrompt renders the BarGPT instruction with the open-tab count,
// the estimated revenue over the given tabs, and a bullet list of menu
// entries.
func systemPrompt(menu []product.Product, tabs []tab.Tab) string {
	openCount := 0
	revenue := decimal.Zero
	for _, t := range tabs {
		if t.Status == tab.StatusOpen {
			openCount++
		}
		revenue = revenue.Add(t.Total())
	}

	var menuLines strings.Builder
	for _, p := range menu {
		fmt.Fprintf(&menuLines, "- %s (R$ %s): %s\n", p.Name, p.Price.StringFixed(2), p.Description)
	}

	var b strings.Builder
	b.WriteString("Você é um especialista em mixologia, gestão de bares e atendimento ao cliente chamado \"BarGPT\".\n\n")
	b.WriteString("Contexto do Bar:\n")
	fmt.Fprintf(&b, "- Mesas Abertas: %d\n", openCount)
	fmt.Fprintf(&b, "- Faturamento Atual (estimado): R$ %s\n\n", revenue.StringFixed(2))
	b.WriteString("Menu Atual:\n")
	b.WriteString(menuLines.String())
	b.WriteString("\nSuas funções:\n")
	b.WriteString("1. Sugerir drinks com base em ingredientes ou preferências do cliente.\n")
	b.WriteString("2. Explicar itens do menu.\n")
	b.WriteString("3. Dar dicas de gestão baseadas no movimento atual (ex: se muitas mesas, sugerir agilidade).\n")
	b.WriteString("4. Criar descrições criativas para novos pratos ou drinks se solicitado.\n\n")
	b.WriteString("Responda de forma concisa, amigável e profissional (em Português do Brasil).")
	return b.String()
}

// encodeRequest builds the generateContent request body.
func encodeRequest(system, query string) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("system_instruction", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("parts", func(e *jx.Encoder) {
					e.Arr(func(e *jx.Encoder) {
						e.Obj(func(e *jx.Encoder) {
							e.Field("text", func(e *jx.Encoder) { e.Str(system) })
						})
					})
				})
			})
		})
		e.Field("contents", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("role", func(e *jx.Encoder) { e.Str("user") })
					e.Field("parts", func(e *jx.Encoder) {
						e.Arr(func(e *jx.Encoder) {
							e.Obj(func(e *jx.Encoder) {
								e.Field("text", func(e *jx.Encoder) { e.Str(query) })
							})
						})
					})
				})
			})
		})
		e.Field("generationConfig", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("temperature", func(e *jx.Encoder) { e.Float64(temperature) })
			})
		})
	})
	return e.Bytes()
}

// decodeResponse extracts the concatenated text parts of the first
// candidate from a generateContent response.
func decodeResponse(data []byte) (string, error) {
	var (
		b     strings.Builder
		first = true
	)
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "candidates" {
			return d.Skip()
		}
		return d.Arr(func(d *jx.Decoder) error {
			if !first {
				return d.Skip()
			}
			first = false
			return d.Obj(func(d *jx.Decoder, key string) error {
				if key != "content" {
					return d.Skip()
				}
				return d.Obj(func(d *jx.Decoder, key string) error {
					if key != "parts" {
						return d.Skip()
					}
					return d.Arr(func(d *jx.Decoder) error {
						return d.Obj(func(d *jx.Decoder, key string) error {
							if key != "text" {
								return d.Skip()
							}
							text, err := d.Str()
							if err != nil {
								return err
							}
							b.WriteString(text)
							return nil
						})
					})
				})
			})
		})
	})
	if err != nil {
		return "", errors.Wrap(err, "decode candidates")
	}
	return b.String(), nil
}
