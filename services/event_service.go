package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"hostelswap_server/models"
	"hostelswap_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

type EventInput struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	Location    string `json:"location" validate:"max=200"`
	Hostel      string `json:"hostel" validate:"max=100"`
	StartsAt    string `json:"startsAt" validate:"required"`
	EndsAt      string `json:"endsAt" validate:"required"`
	Capacity    int    `json:"capacity" validate:"gte=0"`
}

// EventService manages hostel events; attendance is a string set guarded by capacity
type EventService struct {
	Dynamo   *DynamoService
	Notifier Notifier
	Now      func() time.Time
}

func (s *EventService) CreateEvent(ctx context.Context, organizerID string, input EventInput) (*models.Event, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, utils.NewValidationError("title is required")
	}
	startsAt, err := time.Parse(time.RFC3339, input.StartsAt)
	if err != nil {
		return nil, utils.NewValidationError("startsAt must be an RFC3339 timestamp")
	}
	endsAt, err := time.Parse(time.RFC3339, input.EndsAt)
	if err != nil {
		return nil, utils.NewValidationError("endsAt must be an RFC3339 timestamp")
	}
	now := s.Now()
	if !startsAt.After(now) {
		return nil, utils.NewValidationError("startsAt must be in the future")
	}
	if !endsAt.After(startsAt) {
		return nil, utils.NewValidationError("endsAt must be after startsAt")
	}
	if input.Capacity < 0 {
		return nil, utils.NewValidationError("capacity cannot be negative")
	}

	event := &models.Event{
		EventID:     uuid.NewString(),
		OrganizerID: organizerID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		Hostel:      strings.TrimSpace(input.Hostel),
		StartsAt:    models.Timestamp(startsAt),
		EndsAt:      models.Timestamp(endsAt),
		Capacity:    input.Capacity,
		Attendees:   []string{organizerID},
		CreatedAt:   models.Timestamp(now),
	}
	if err := s.Dynamo.PutItemWithCondition(ctx, models.EventsTable, event, "attribute_not_exists(eventId)", nil, nil); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	log.Printf("✅ Event %s created by %s", event.EventID, organizerID)
	s.Notifier.NotifyTopic(models.TopicEvents, models.EventNewEvent, event)
	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	if err := s.Dynamo.GetItem(ctx, models.EventsTable, StringKey("eventId", eventID), &event); err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("event not found")
		}
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	return &event, nil
}

// ListUpcoming returns events that have not ended, soonest first. hostel narrows the list
// to that hostel's events plus the ones open to every hostel.
func (s *EventService) ListUpcoming(ctx context.Context, hostel string) ([]models.Event, error) {
	now := models.Timestamp(s.Now())
	var events []models.Event
	err := s.Dynamo.ScanWithFilter(ctx, models.EventsTable, "", nil, nil,
		func(item map[string]types.AttributeValue) bool {
			if utils.ExtractString(item, "endsAt") <= now {
				return false
			}
			eventHostel := utils.ExtractString(item, "hostel")
			return hostel == "" || eventHostel == "" || strings.EqualFold(eventHostel, hostel)
		},
		&events,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartsAt < events[j].StartsAt })
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

// JoinEvent adds userID to the attendees. A full event yields a conflict; joining twice is a no-op.
func (s *EventService) JoinEvent(ctx context.Context, eventID, userID string) (*models.Event, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.EndsAt <= models.Timestamp(s.Now()) {
		return nil, utils.NewValidationError("event has already ended")
	}

	attrs, err := s.Dynamo.UpdateItem(ctx, models.EventsTable, StringKey("eventId", eventID),
		"ADD attendees :user",
		"attribute_exists(eventId) AND (capacity = :zero OR attribute_not_exists(attendees) OR size(attendees) < capacity OR contains(attendees, :uid))",
		map[string]types.AttributeValue{
			":user": &types.AttributeValueMemberSS{Value: []string{userID}},
			":uid":  &types.AttributeValueMemberS{Value: userID},
			":zero": &types.AttributeValueMemberN{Value: "0"},
		},
		nil,
	)
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, utils.NewConflictError("event is full")
		}
		return nil, fmt.Errorf("failed to join event: %w", err)
	}
	return unmarshalEvent(attrs)
}

func (s *EventService) LeaveEvent(ctx context.Context, eventID, userID string) (*models.Event, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID == userID {
		return nil, utils.NewValidationError("the organizer cannot leave their own event")
	}
	attrs, err := s.Dynamo.UpdateItem(ctx, models.EventsTable, StringKey("eventId", eventID),
		"DELETE attendees :user",
		"attribute_exists(eventId)",
		map[string]types.AttributeValue{":user": &types.AttributeValueMemberSS{Value: []string{userID}}},
		nil,
	)
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, utils.NewNotFoundError("event not found")
		}
		return nil, fmt.Errorf("failed to leave event: %w", err)
	}
	return unmarshalEvent(attrs)
}

// DeleteEvent removes an event; only its organizer may do so
func (s *EventService) DeleteEvent(ctx context.Context, eventID, userID string) error {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != userID {
		return utils.NewForbiddenError("only the organizer can delete this event")
	}
	err = s.Dynamo.DeleteItem(ctx, models.EventsTable, StringKey("eventId", eventID),
		"organizerId = :uid",
		map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: userID}},
		nil,
	)
	if err != nil && !errors.Is(err, ErrConditionFailed) {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	log.Printf("🗑️ Event %s deleted by %s", eventID, userID)
	return nil
}

func unmarshalEvent(attrs map[string]types.AttributeValue) (*models.Event, error) {
	var event models.Event
	if err := attributevalue.UnmarshalMap(attrs, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &event, nil
}
