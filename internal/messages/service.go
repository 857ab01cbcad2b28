package messages

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/angelmondragon/its27-backend/pkg/db/models"
	"github.com/angelmondragon/its27-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/logger"
	"github.com/angelmondragon/its27-backend/pkg/pagination"
	"github.com/go-playground/validator/v10"
)

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}()

// CreateInput is the public contact form.
type CreateInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Message string `json:"message" validate:"required,max=5000"`
}

// MessageDTO is the admin view of a contact message.
type MessageDTO struct {
	ID        int64               `json:"id"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Message   string              `json:"message"`
	Status    enums.MessageStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// MessageList is one page of messages.
type MessageList struct {
	Messages   []MessageDTO `json:"messages"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func toDTO(m models.ContactMessage) MessageDTO {
	return MessageDTO{ID: m.ID, Name: m.Name, Email: m.Email, Message: m.Message, Status: m.Status, CreatedAt: m.CreatedAt}
}

type store interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context, status *enums.MessageStatus, params pagination.Params) ([]models.ContactMessage, string, error)
	Get(ctx context.Context, id int64) (*models.ContactMessage, error)
	UpdateStatus(ctx context.Context, id int64, status enums.MessageStatus) error
	Delete(ctx context.Context, id int64) error
}

// Service handles the contact inbox.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*MessageDTO, error)
	List(ctx context.Context, status string, params pagination.Params) (*MessageList, error)
	MarkRead(ctx context.Context, id int64) (*MessageDTO, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo store
	logg *logger.Logger
}

func NewService(repo store, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("messages repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*MessageDTO, error) {
	input = CreateInput{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Message: strings.TrimSpace(input.Message),
	}
	if err := validate.Struct(input); err != nil {
		return nil, validationError(err)
	}
	msg := &models.ContactMessage{Name: input.Name, Email: input.Email, Message: input.Message, Status: enums.MessageStatusNew}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "message could not be sent, please try again")
	}
	s.logg.Info(s.logg.WithField(ctx, "message_id", msg.ID), "messages.received")
	dto := toDTO(*msg)
	return &dto, nil
}

func (s *service) List(ctx context.Context, rawStatus string, params pagination.Params) (*MessageList, error) {
	var status *enums.MessageStatus
	if rawStatus != "" {
		parsed, err := enums.ParseMessageStatus(rawStatus)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid message status filter")
		}
		status = &parsed
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, status, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not list messages")
	}
	list := &MessageList{Messages: make([]MessageDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		list.Messages = append(list.Messages, toDTO(row))
	}
	return list, nil
}

func (s *service) MarkRead(ctx context.Context, id int64) (*MessageDTO, error) {
	if err := s.repo.UpdateStatus(ctx, id, enums.MessageStatusRead); err != nil {
		return nil, mapRepoError(err, id)
	}
	msg, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	dto := toDTO(*msg)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, id)
	}
	s.logg.Info(s.logg.WithField(ctx, "message_id", id), "messages.deleted")
	return nil
}

func mapRepoError(err error, id int64) error {
	if errors.Is(err, ErrMessageNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("message %d not found", id))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "message store unavailable")
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid message")
	}
	fields := pkgerrors.FieldErrors{}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "is required"
		case "email":
			fields[fe.Field()] = "must be a valid email"
		case "max":
			fields[fe.Field()] = "is too long"
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return pkgerrors.Validation("invalid message", fields)
}
