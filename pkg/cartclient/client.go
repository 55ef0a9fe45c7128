package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mateoquiroz/bookhaven-backend/pkg/cartstore"
	"github.com/mateoquiroz/bookhaven-backend/pkg/config"
	pkgerrors "github.com/mateoquiroz/bookhaven-backend/pkg/errors"
)

// TokenSource supplies the bearer token attached to each request.
type TokenSource func() string

// StaticToken wraps a fixed token string.
func StaticToken(token string) TokenSource {
	return func() string { return token }
}

// Client talks to the cart REST API. It implements cartstore.Service.
type Client struct {
	baseURL string
	token   TokenSource
	http    *http.Client
}

var _ cartstore.Service = (*Client)(nil)

// New builds a client for the configured cart API. A zero timeout leaves
// requests unbounded; the store treats every call as best-effort anyway.
func New(cfg config.CartAPIConfig, token TokenSource) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("cart api base url is required")
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: base,
		token:   token,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type wireLineItem struct {
	ID              uuid.UUID        `json:"id"`
	ProductID       uuid.UUID        `json:"productId"`
	ProductFormatID uuid.UUID        `json:"productFormatId"`
	Quantity        int              `json:"quantity"`
	ProductTitle    string           `json:"productTitle"`
	FormatType      string           `json:"formatType"`
	Price           decimal.Decimal  `json:"price"`
	FinalPrice      *decimal.Decimal `json:"finalPrice,omitempty"`
}

type wireCart struct {
	Items []wireLineItem `json:"items"`
}

type addItemBody struct {
	ProductID       uuid.UUID `json:"productId"`
	ProductFormatID uuid.UUID `json:"productFormatId"`
	Quantity        int       `json:"quantity"`
}

type updateItemBody struct {
	CartItemID uuid.UUID `json:"cartItemId"`
	Quantity   int       `json:"quantity"`
}

// FetchCart returns the server's current line items.
func (c *Client) FetchCart(ctx context.Context) ([]cartstore.ServerItem, error) {
	var payload wireCart
	if err := c.do(ctx, http.MethodGet, "/api/v1/cart", nil, &payload); err != nil {
		return nil, err
	}
	items := make([]cartstore.ServerItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, toServerItem(item))
	}
	return items, nil
}

// CreateItem posts a new line item and returns the server's record.
func (c *Client) CreateItem(ctx context.Context, item cartstore.Item) (*cartstore.ServerItem, error) {
	body := addItemBody{
		ProductID:       item.Product.ID,
		ProductFormatID: item.Product.SelectedFormat.ID,
		Quantity:        item.Quantity,
	}
	var payload wireLineItem
	if err := c.do(ctx, http.MethodPost, "/api/v1/cart/items", body, &payload); err != nil {
		return nil, err
	}
	out := toServerItem(payload)
	return &out, nil
}

// UpdateItemQuantity patches the quantity of an existing server line item.
func (c *Client) UpdateItemQuantity(ctx context.Context, serverID uuid.UUID, quantity int) (*cartstore.ServerItem, error) {
	body := updateItemBody{CartItemID: serverID, Quantity: quantity}
	var payload wireLineItem
	if err := c.do(ctx, http.MethodPatch, "/api/v1/cart/items", body, &payload); err != nil {
		return nil, err
	}
	out := toServerItem(payload)
	return &out, nil
}

// DeleteItem removes one server line item.
func (c *Client) DeleteItem(ctx context.Context, serverID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/cart/items/"+serverID.String(), nil, nil)
}

// ClearCart wipes the server cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/cart", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart api unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart api response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cart api envelope")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cart api payload")
	}
	return nil
}

func decodeAPIError(status int, raw []byte) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		return pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message)
	}
	return pkgerrors.New(codeForStatus(status), fmt.Sprintf("cart api returned status %d", status))
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	}
	return pkgerrors.CodeDependency
}

func toServerItem(item wireLineItem) cartstore.ServerItem {
	return cartstore.ServerItem{
		ID:         item.ID,
		ProductID:  item.ProductID,
		FormatID:   item.ProductFormatID,
		Quantity:   item.Quantity,
		Title:      item.ProductTitle,
		FormatType: item.FormatType,
		Price:      item.Price,
		FinalPrice: item.FinalPrice,
	}
}
