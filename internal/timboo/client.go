// Package timboo is a typed client for the Timboo spinner mini-app API.
package timboo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"jordanella.com/spinner-go/internal/config"
	"jordanella.com/spinner-go/internal/logging"
)

// ClickScale converts a spin increment into the "timestamp" value upd-data expects.
// The factor is part of the external service's contract; it is not derived here.
const ClickScale int64 = 86559566

// Endpoint paths, relative to the profile hosts
const (
	endpointRegister         = "/register"
	endpointGetData          = "/get_data"
	endpointOpenBox          = "/open_box"
	endpointCheckRequirement = "/check_requirement"
	endpointAdsgram          = "/adsgram"

	endpointInitData       = "/init-data"
	endpointRepairSpinner  = "/repair-spinner"
	endpointUpgradeSpinner = "/upgrade-spinner"
	endpointUpdateData     = "/upd-data"
)

// Client talks to both API hosts. All calls are POST with a JSON body and the
// profile's static header set.
type Client struct {
	http  *resty.Client
	hosts config.Hosts
}

// Option configures a Client
type Option func(*resty.Client)

// WithTimeout sets a per-request timeout; zero keeps the transport default
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		if d > 0 {
			c.SetTimeout(d)
		}
	}
}

// WithLogger routes resty's own diagnostics through logger
func WithLogger(logger *logging.Logger) Option {
	return func(c *resty.Client) {
		c.SetLogger(restyLogger{logger})
	}
}

// WithDebug dumps requests and responses through the client logger
func WithDebug(debug bool) Option {
	return func(c *resty.Client) {
		c.SetDebug(debug)
	}
}

// New creates a client from an immutable profile
func New(profile config.Profile, opts ...Option) *Client {
	rc := resty.New().
		SetHeaders(profile.Headers())

	for _, opt := range opts {
		opt(rc)
	}

	return &Client{
		http:  rc,
		hosts: profile.Hosts(),
	}
}

func (c *Client) gameURL(endpoint string) string {
	return strings.TrimRight(c.hosts.Game, "/") + endpoint
}

func (c *Client) backendURL(endpoint string) string {
	return strings.TrimRight(c.hosts.Backend, "/") + endpoint
}

// post sends body to url and decodes a 2xx reply into out (when out is non-nil)
func (c *Client) post(ctx context.Context, endpoint, url string, body, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(url)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}

	if !resp.IsSuccess() {
		return newStatusError(endpoint, resp.StatusCode(), resp.Body())
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: %w: %v", endpoint, ErrUnexpectedResponse, err)
	}
	return nil
}

type credentialBody struct {
	InitData string `json:"initData"`
}

// Register creates the account, or confirms it already exists
func (c *Client) Register(ctx context.Context, initData string) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.post(ctx, "register", c.gameURL(endpointRegister), credentialBody{initData}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Boxes fetches the reward box states
func (c *Client) Boxes(ctx context.Context, initData string) ([]Box, error) {
	var out boxesResponse
	if err := c.post(ctx, "get_data", c.gameURL(endpointGetData), credentialBody{initData}, &out); err != nil {
		return nil, err
	}
	return out.Boxes, nil
}

// OpenBox claims a reward box
func (c *Client) OpenBox(ctx context.Context, initData string, boxID int) (*OpenBoxResponse, error) {
	body := struct {
		InitData string `json:"initData"`
		BoxID    int    `json:"boxId"`
	}{initData, boxID}

	var out OpenBoxResponse
	if err := c.post(ctx, "open_box", c.gameURL(endpointOpenBox), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckRequirement asks the server to verify a task requirement
func (c *Client) CheckRequirement(ctx context.Context, initData string, requirementID int) (*RequirementResponse, error) {
	body := struct {
		InitData      string `json:"initData"`
		RequirementID int    `json:"requirementId"`
	}{initData, requirementID}

	var out RequirementResponse
	if err := c.post(ctx, "check_requirement", c.gameURL(endpointCheckRequirement), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartAd begins an ad view and returns the hash that completes it
func (c *Client) StartAd(ctx context.Context, initData string) (string, error) {
	var out AdResponse
	if err := c.post(ctx, "adsgram", c.gameURL(endpointAdsgram), credentialBody{initData}, &out); err != nil {
		return "", err
	}
	if out.Hash == "" {
		return "", fmt.Errorf("adsgram: %w: no hash", ErrUnexpectedResponse)
	}
	return out.Hash, nil
}

// CompleteAd finishes the ad view started with hash. A zero Reward means the
// view was not credited.
func (c *Client) CompleteAd(ctx context.Context, initData, hash string) (*AdResponse, error) {
	body := struct {
		InitData string `json:"initData"`
		Hash     string `json:"hash"`
	}{initData, hash}

	var out AdResponse
	if err := c.post(ctx, "adsgram", c.gameURL(endpointAdsgram), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitData fetches the account snapshot: balance, spinners, levels and task sections
func (c *Client) InitData(ctx context.Context, initData string) (*InitData, error) {
	var out initDataResponse
	if err := c.post(ctx, "init-data", c.backendURL(endpointInitData), credentialBody{initData}, &out); err != nil {
		return nil, err
	}
	if !isDataReceived(out.Message) || out.InitData == nil {
		return nil, fmt.Errorf("init-data: %w: message %q", ErrUnexpectedResponse, out.Message)
	}
	return out.InitData, nil
}

// RepairSpinner starts a repair. It reports false when the server answered with
// anything other than its success message.
func (c *Client) RepairSpinner(ctx context.Context, initData string) (bool, error) {
	var out messageResponse
	if err := c.post(ctx, "repair-spinner", c.backendURL(endpointRepairSpinner), credentialBody{initData}, &out); err != nil {
		return false, err
	}
	return isDataReceived(out.Message), nil
}

// UpgradeSpinner levels the spinner up
func (c *Client) UpgradeSpinner(ctx context.Context, initData string, spinnerID int) (bool, error) {
	body := struct {
		InitData  string `json:"initData"`
		SpinnerID int    `json:"spinnerId"`
	}{initData, spinnerID}

	var out messageResponse
	if err := c.post(ctx, "upgrade-spinner", c.backendURL(endpointUpgradeSpinner), body, &out); err != nil {
		return false, err
	}
	return out.Message == messageUpgraded, nil
}

type updateBody struct {
	InitData string     `json:"initData"`
	Data     updateData `json:"data"`
}

type updateData struct {
	Timestamp int64 `json:"timestamp"`
	IsClose   *bool `json:"isClose"` // always null
}

// UpdateData submits one spin increment. A 4xx reply is returned as a StatusError
// whose Rejected method reports true.
func (c *Client) UpdateData(ctx context.Context, initData string, clicks int) error {
	body := updateBody{
		InitData: initData,
		Data:     updateData{Timestamp: int64(clicks) * ClickScale},
	}
	return c.post(ctx, "upd-data", c.backendURL(endpointUpdateData), body, nil)
}

// The server has been seen both with and without the trailing period.
func isDataReceived(message string) bool {
	return strings.TrimSuffix(message, ".") == messageDataReceived
}

// restyLogger adapts logging.Logger to resty.Logger
type restyLogger struct {
	l *logging.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) {
	r.l.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), nil)
}

func (r restyLogger) Warnf(format string, v ...interface{}) {
	r.l.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r restyLogger) Debugf(format string, v ...interface{}) {
	r.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
