package knowledge

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/util"
)

const (
	defaultBaseURL = "https://api.wolframalpha.com"
	defaultTimeout = 10 * time.Second
	resultPodID    = "Result"
	maxBodyBytes   = 1 << 20
)

// Config holds WolframAlpha client settings
type Config struct {
	AppID      string
	BaseURL    string
	Timeout    time.Duration
	Fallback   bool // query the Short Answers API when the full query fails
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// ConfigFromModel maps the application config onto verifier settings
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		AppID:      cfg.Knowledge.AppID,
		BaseURL:    cfg.Knowledge.BaseURL,
		Timeout:    cfg.Knowledge.Timeout,
		Fallback:   cfg.Knowledge.Fallback,
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		NoProxy:    cfg.HTTP.NoProxy,
	}
}

// Verifier looks up normalized queries on WolframAlpha.
// Every outcome, including transport failures, is reported as Evidence.
type Verifier struct {
	appID    string
	baseURL  string
	fallback bool
	client   *http.Client
	logger   *zap.Logger
}

// NewVerifier creates a WolframAlpha verifier
func NewVerifier(cfg Config, logger *zap.Logger) (*Verifier, error) {
	if cfg.AppID == "" {
		return nil, fmt.Errorf("%w: WOLFRAM_APPID not set", model.ErrMissingCredential)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Verifier{
		appID:    cfg.AppID,
		baseURL:  baseURL,
		fallback: cfg.Fallback,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		logger: logger.Named("knowledge"),
	}, nil
}

// queryResult mirrors the parts of the v2 query XML document we read
type queryResult struct {
	XMLName xml.Name `xml:"queryresult"`
	Success bool     `xml:"success,attr"`
	Error   bool     `xml:"error,attr"`
	Pods    []pod    `xml:"pod"`
	Failure *struct {
		Code string `xml:"code"`
		Msg  string `xml:"msg"`
	} `xml:"error"`
}

type pod struct {
	ID      string   `xml:"id,attr"`
	Title   string   `xml:"title,attr"`
	Subpods []subpod `xml:"subpod"`
}

type subpod struct {
	Plaintext string `xml:"plaintext"`
}

// errStatus marks a non-200 answer from the full results API
type errStatus struct {
	code int
}

func (e *errStatus) Error() string {
	return fmt.Sprintf("status code %d", e.code)
}

// Lookup queries WolframAlpha and classifies the outcome
func (v *Verifier) Lookup(ctx context.Context, query model.Query) model.Evidence {
	start := time.Now()
	ev, err := v.queryFull(ctx, query)
	if err != nil {
		var se *errStatus
		if errors.As(err, &se) {
			ev = model.StatusErrorEvidence(se.code)
		} else {
			ev = model.QueryErrorEvidence(err)
		}
		if v.fallback {
			if text, ferr := v.queryShort(ctx, query); ferr == nil {
				v.logger.Info("short answers fallback used",
					zap.String("query", query.String()),
					zap.NamedError("primary", err))
				ev = model.UsableEvidence(text)
			} else {
				v.logger.Debug("short answers fallback failed", zap.Error(ferr))
			}
		}
	}

	v.logger.Debug("lookup",
		zap.String("query", query.String()),
		zap.String("kind", string(ev.Kind)),
		zap.Duration("took", time.Since(start)))
	return ev
}

// queryFull calls the v2 full results API. Errors are transport failures or
// non-200 statuses; document-level outcomes come back as evidence.
func (v *Verifier) queryFull(ctx context.Context, query model.Query) (model.Evidence, error) {
	params := url.Values{}
	params.Set("appid", v.appID)
	params.Set("input", string(query))
	params.Set("format", "plaintext")
	params.Set("includepodid", resultPodID)

	body, err := v.get(ctx, v.baseURL+"/v2/query?"+params.Encode())
	if err != nil {
		return model.Evidence{}, err
	}

	var doc queryResult
	if err := xml.Unmarshal(body, &doc); err != nil {
		return model.QueryErrorEvidence(fmt.Errorf("decode response: %w", err)), nil
	}
	if doc.Error {
		msg := "service reported an error"
		if doc.Failure != nil && doc.Failure.Msg != "" {
			msg = doc.Failure.Msg
		}
		return model.QueryErrorEvidence(errors.New(msg)), nil
	}

	return evidenceFromPods(doc.Pods), nil
}

func evidenceFromPods(pods []pod) model.Evidence {
	for _, p := range pods {
		if p.ID != resultPodID {
			continue
		}
		var parts []string
		for _, sp := range p.Subpods {
			if text := strings.TrimSpace(sp.Plaintext); text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) == 0 {
			return model.NoPlaintextEvidence()
		}
		return model.UsableEvidence(strings.Join(parts, "\n"))
	}
	return model.NoPodEvidence()
}

// queryShort calls the v1 Short Answers API
func (v *Verifier) queryShort(ctx context.Context, query model.Query) (string, error) {
	params := url.Values{}
	params.Set("appid", v.appID)
	params.Set("i", string(query))

	body, err := v.get(ctx, v.baseURL+"/v1/result?"+params.Encode())
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", errors.New("empty short answer")
	}
	return text, nil
}

func (v *Verifier) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, redact(err, v.appID)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &errStatus{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// IsAvailable checks that the API host answers at all
func (v *Verifier) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, v.baseURL+"/v2/query", nil)
	if err != nil {
		return false
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// redact keeps the app id out of error text, which ends up in results and logs
func redact(err error, appID string) error {
	if appID == "" || !strings.Contains(err.Error(), appID) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), appID, "REDACTED"))
}
