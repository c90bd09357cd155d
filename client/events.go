package client

import (
	"context"
	"fmt"
	"net/http"
)

// Events operations - public listing with a last-known-good cache, plus the
// authenticated enrollment writes.
type Events struct {
	c    *Client
	list *Cache[Event]
}

func newEvents(c *Client) *Events {
	// The events list is public: it survives session expiry untouched.
	return &Events{c: c, list: newCache[Event]("events")}
}

// List refreshes the events collection. On a server or transport failure the
// previously cached events are served instead of an error.
func (e *Events) List(ctx context.Context) ([]Event, error) {
	return e.list.refresh(ctx, func(ctx context.Context) ([]Event, error) {
		var events []Event
		if err := e.c.getJSON(ctx, "/events", authNone, &events); err != nil {
			return nil, err
		}
		return events, nil
	})
}

// Cached returns the events collection without a network call.
func (e *Events) Cached() *Cache[Event] { return e.list }

// Get fetches one event. The token is attached opportunistically: with a
// session the backend includes participant-only fields, without one the
// public representation comes back.
func (e *Events) Get(ctx context.Context, eventID int) (*Event, error) {
	var ev Event
	if err := e.c.getJSON(ctx, fmt.Sprintf("/events/%d", eventID), authOptional, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Join enrolls the user in an event. Write path: failures surface typed, no
// fallback.
func (e *Events) Join(ctx context.Context, eventID int) error {
	_, err := e.c.do(ctx, http.MethodPost, fmt.Sprintf("/events/%d/register", eventID), nil, requestOptions{auth: authRequired})
	return err
}

// Leave withdraws the user's enrollment.
func (e *Events) Leave(ctx context.Context, eventID int) error {
	_, err := e.c.do(ctx, http.MethodDelete, fmt.Sprintf("/events/%d/register", eventID), nil, requestOptions{auth: authRequired})
	return err
}

// Participants lists who is enrolled.
func (e *Events) Participants(ctx context.Context, eventID int) ([]Participant, error) {
	var ps []Participant
	if err := e.c.getJSON(ctx, fmt.Sprintf("/events/%d/participants", eventID), authRequired, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// GalleryImages returns the image URLs attached to an event. Public; a
// failure yields an empty slice with the error for the caller to log.
func (e *Events) GalleryImages(ctx context.Context, eventID int) ([]string, error) {
	var images []galleryImage
	if err := e.c.getJSON(ctx, fmt.Sprintf("/gallery?event_id=%d", eventID), authNone, &images); err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.ImageURL)
	}
	return urls, nil
}
