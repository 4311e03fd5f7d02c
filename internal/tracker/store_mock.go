package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/liftprogress/internal/trello"
)

// storeMock is an in-memory card store used in tests.
type storeMock struct {
	boards map[string]trello.Board
	lists  map[string]trello.List
	cards  map[string]*trello.Card

	nextID      int
	createCalls int
	failWith    error
	now         time.Time
}

func newStoreMock() *storeMock {
	return &storeMock{
		boards: make(map[string]trello.Board),
		lists:  make(map[string]trello.List),
		cards:  make(map[string]*trello.Card),
		now:    time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC),
	}
}

func (m *storeMock) newID(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *storeMock) ListBoards(_ context.Context) ([]trello.Board, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	boards := make([]trello.Board, 0, len(m.boards))
	for _, b := range m.boards {
		boards = append(boards, b)
	}
	return boards, nil
}

func (m *storeMock) CreateBoard(_ context.Context, name string) (*trello.Board, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.createCalls++
	board := trello.Board{ID: m.newID("board"), Name: name}
	m.boards[board.ID] = board
	return &board, nil
}

func (m *storeMock) ListLists(_ context.Context, boardID string) ([]trello.List, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	lists := make([]trello.List, 0, len(m.lists))
	for _, l := range m.lists {
		lists = append(lists, l)
	}
	return lists, nil
}

func (m *storeMock) CreateList(_ context.Context, boardID, name string) (*trello.List, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.createCalls++
	list := trello.List{ID: m.newID("list"), Name: name}
	m.lists[list.ID] = list
	return &list, nil
}

func (m *storeMock) ListCards(_ context.Context, listID string) ([]trello.Card, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var cards []trello.Card
	for _, c := range m.cards {
		if c.IDList == listID {
			cards = append(cards, *c)
		}
	}
	return cards, nil
}

func (m *storeMock) CreateCard(_ context.Context, listID, name, desc string) (*trello.Card, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.createCalls++
	// monotonic activity timestamps, like the real store would report
	m.now = m.now.Add(time.Minute)
	card := &trello.Card{
		ID:               m.newID("card"),
		Name:             name,
		Desc:             desc,
		IDList:           listID,
		DateLastActivity: m.now,
	}
	m.cards[card.ID] = card
	return card, nil
}

func (m *storeMock) UpdateCardDesc(_ context.Context, cardID, desc string) error {
	if m.failWith != nil {
		return m.failWith
	}
	card, ok := m.cards[cardID]
	if !ok {
		return errors.New("card not found")
	}
	m.now = m.now.Add(time.Minute)
	card.Desc = desc
	card.DateLastActivity = m.now
	return nil
}

func (m *storeMock) MoveCard(_ context.Context, cardID, targetListID string) error {
	if m.failWith != nil {
		return m.failWith
	}
	card, ok := m.cards[cardID]
	if !ok {
		return errors.New("card not found")
	}
	card.IDList = targetListID
	return nil
}

func (m *storeMock) cardsInList(listID string) []*trello.Card {
	var cards []*trello.Card
	for _, c := range m.cards {
		if c.IDList == listID {
			cards = append(cards, c)
		}
	}
	return cards
}
