package trello

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/2beens/liftprogress/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultBaseURL = "https://api.trello.com/1"

// Client is a narrow REST client for the card/board store. The store offers
// no transactions and no conditional updates; every method is a single
// request whose failure is propagated to the caller untouched.
type Client struct {
	baseURL    string
	apiKey     string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, token string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		token:      token,
		httpClient: httpClient,
	}
}

func (c *Client) ListBoards(ctx context.Context) (_ []Board, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trello.listBoards")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var boards []Board
	if err := c.do(ctx, http.MethodGet, "/members/me/boards?filter=open", nil, &boards); err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return boards, nil
}

func (c *Client) CreateBoard(ctx context.Context, name string) (_ *Board, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trello.createBoard")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("board.name", name))

	board := &Board{}
	payload := map[string]any{
		"name":         name,
		"defaultLists": false,
	}
	if err := c.do(ctx, http.MethodPost, "/boards", payload, board); err != nil {
		return nil, fmt.Errorf("create board [%s]: %w", name, err)
	}

	log.Debugf("trello: created board [%s]: %s", name, board.ID)
	return board, nil
}

func (c *Client) ListLists(ctx context.Context, boardID string) (_ []List, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trello.listLists")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var lists []List
	path := fmt.Sprintf("/boards/%s/lists?filter=open", boardID)
	if err := c.do(ctx, http.MethodGet, path, nil, &lists); err != nil {
		return nil, fmt.Errorf("list lists of board [%s]: %w", boardID, err)
	}
	return lists, nil
}

func (c *Client) CreateList(ctx context.Context, boardID, name string) (_ *List, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trello.createList")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("list.name", name))

	list := &List{}
	payload := map[string]any{
		"name":    name,
		"idBoard": boardID,
		"pos":     "bottom",
	}
	if err := c.do(ctx, http.MethodPost, "/lists", payload, list); err != nil {
		return nil, fmt.Errorf("create list [%s] on board [%s]: %w", name, boardID, err)
	}

	log.Debugf("trello: created list [%s] on board [%s]: %s", name, boardID, list.ID)
	return list, nil
}

func (c *Client) ListCards(ctx context.Context, listID string) (_ []Card, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trello.listCards")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var cards []Card
	path := fmt.Sprintf("/lists/%s/cards?fields=name,desc,idList,dateLastActivity", listID)
	if err := c.do(ctx, http.MethodGet, path, nil, &cards); err != nil {
		return nil, fmt.Errorf("list cards of list [%s]: %w", listID, err)
	}
	return cards, nil
}

func (c *Client) CreateCard(ctx context.Context, listID, name, desc string) (_ *Card, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trello.createCard")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	card := &Card{}
	payload := map[string]any{
		"idList": listID,
		"name":   name,
		"desc":   desc,
	}
	if err := c.do(ctx, http.MethodPost, "/cards", payload, card); err != nil {
		return nil, fmt.Errorf("create card [%s] in list [%s]: %w", name, listID, err)
	}

	log.Debugf("trello: created card [%s] in list [%s]: %s", name, listID, card.ID)
	return card, nil
}

func (c *Client) UpdateCardDesc(ctx context.Context, cardID, desc string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trello.updateCardDesc")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	payload := map[string]any{"desc": desc}
	if err := c.do(ctx, http.MethodPut, "/cards/"+cardID, payload, nil); err != nil {
		return fmt.Errorf("update card [%s]: %w", cardID, err)
	}
	return nil
}

func (c *Client) MoveCard(ctx context.Context, cardID, targetListID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "trello.moveCard")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	payload := map[string]any{"idList": targetListID}
	if err := c.do(ctx, http.MethodPut, "/cards/"+cardID, payload, nil); err != nil {
		return fmt.Errorf("move card [%s] to list [%s]: %w", cardID, targetListID, err)
	}
	return nil
}

// do runs one request against the store, appending the credentials as query
// params the way the API wants them. Non-2xx responses become errors
// carrying the status and the response body.
func (c *Client) do(ctx context.Context, method, path string, payload, target any) error {
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	url := fmt.Sprintf("%s%s%skey=%s&token=%s", c.baseURL, path, separator, c.apiKey, c.token)

	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// do not log the url, it carries the credentials
	log.Tracef("trello: %s %s", method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response of %s %s: %w", method, path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("trello %d: %s", resp.StatusCode, respBytes)
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(respBytes, target); err != nil {
		return fmt.Errorf("unmarshal response of %s %s: %w", method, path, err)
	}
	return nil
}
