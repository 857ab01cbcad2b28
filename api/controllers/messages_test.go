package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/its27-backend/internal/messages"
	"github.com/angelmondragon/its27-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/pagination"
)

type stubMessages struct {
	created    messages.CreateInput
	listStatus string
	listParams pagination.Params
	deleted    int64
}

func (s *stubMessages) Create(_ context.Context, input messages.CreateInput) (*messages.MessageDTO, error) {
	s.created = input
	return &messages.MessageDTO{ID: 1, Name: input.Name, Email: input.Email, Message: input.Message, Status: enums.MessageStatusNew}, nil
}

func (s *stubMessages) List(_ context.Context, status string, params pagination.Params) (*messages.MessageList, error) {
	s.listStatus = status
	s.listParams = params
	return &messages.MessageList{Messages: []messages.MessageDTO{{ID: 4}}}, nil
}

func (s *stubMessages) MarkRead(_ context.Context, id int64) (*messages.MessageDTO, error) {
	if id != 4 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "message not found")
	}
	return &messages.MessageDTO{ID: id, Status: enums.MessageStatusRead}, nil
}

func (s *stubMessages) Delete(_ context.Context, id int64) error {
	s.deleted = id
	return nil
}

func TestContactCreate(t *testing.T) {
	svc := &stubMessages{}
	body := `{"name":"Lucía","email":"lucia@example.com","message":"¿Tienen aretes de plata?"}`
	resp := serve(ContactCreate(svc, nil), httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(body)))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.created.Email != "lucia@example.com" {
		t.Fatalf("unexpected input %+v", svc.created)
	}
}

func TestContactCreateRejectsBadEmail(t *testing.T) {
	body := `{"name":"Lucía","email":"lucia","message":"hola"}`
	resp := serve(ContactCreate(&stubMessages{}, nil), httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(body)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	apiErr := decodeError(t, resp.Body)
	fields, _ := apiErr.Details.(map[string]any)
	if fields["email"] != "must be a valid email" {
		t.Fatalf("unexpected details %v", apiErr.Details)
	}
}

func TestAdminMessagesListPassesFilters(t *testing.T) {
	svc := &stubMessages{}
	cursor := pagination.Cursor{CreatedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), ID: 9}.Encode()
	resp := serve(AdminMessagesList(svc, nil), httptest.NewRequest(http.MethodGet, "/api/admin/v1/messages?status=new&limit=10&cursor="+cursor, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.listStatus != "new" || svc.listParams.Limit != 10 || svc.listParams.Cursor != cursor {
		t.Fatalf("unexpected list args %q %+v", svc.listStatus, svc.listParams)
	}
}

func TestAdminMessagesListRejectsBadCursor(t *testing.T) {
	svc := &stubMessages{}
	resp := serve(AdminMessagesList(svc, nil), httptest.NewRequest(http.MethodGet, "/api/admin/v1/messages?cursor=abc", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.listParams.Limit != 0 {
		t.Fatalf("service should not be called")
	}
}

func TestAdminMessageReadAndDelete(t *testing.T) {
	svc := &stubMessages{}

	resp := serve(AdminMessageRead(svc, nil), withParams(httptest.NewRequest(http.MethodPost, "/", nil), "id", "4"))
	var msg messages.MessageDTO
	decodeData(t, resp.Body, &msg)
	if msg.Status != enums.MessageStatusRead {
		t.Fatalf("unexpected message %+v", msg)
	}

	resp = serve(AdminMessageRead(svc, nil), withParams(httptest.NewRequest(http.MethodPost, "/", nil), "id", "5"))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}

	resp = serve(AdminMessageDelete(svc, nil), withParams(httptest.NewRequest(http.MethodDelete, "/", nil), "id", "4"))
	if resp.Code != http.StatusNoContent || svc.deleted != 4 {
		t.Fatalf("delete failed: %d %d", resp.Code, svc.deleted)
	}
}
