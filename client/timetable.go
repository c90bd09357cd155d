package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// WeekType filters a schedule query by calendar-week parity.
type WeekType string

const (
	WeekAny  WeekType = ""
	WeekOdd  WeekType = "odd"
	WeekEven WeekType = "even"
)

// Timetable operations - group search/selection and normalized schedules.
//
// The user's own schedule is session-scoped: it clears on session expiry and
// serves nothing while anonymous. Group schedules are public and uncached.
type Timetable struct {
	c        *Client
	schedule *Cache[Lesson]
}

func newTimetable(c *Client) *Timetable {
	t := &Timetable{c: c, schedule: newCache[Lesson]("schedule")}
	c.session.onExpire(t.schedule.clear)
	return t
}

// Schedule returns the cached user-schedule collection.
func (t *Timetable) Schedule() *Cache[Lesson] { return t.schedule }

// SearchGroups queries groups by number or name. Empty query returns no
// results without a network call.
func (t *Timetable) SearchGroups(ctx context.Context, query string) ([]Group, error) {
	if err := validateGroupQuery(query); err != nil {
		return nil, nil
	}
	var groups []Group
	path := "/timetable/search_group?query=" + url.QueryEscape(query)
	if err := t.c.getJSON(ctx, path, authNone, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// UserGroup returns the group the user selected, or ErrNoGroup when none is
// set (the backend answers 404).
func (t *Timetable) UserGroup(ctx context.Context) (*Group, error) {
	var resp userGroupResponse
	err := t.c.getJSON(ctx, "/timetable/user/group", authRequired, &resp)
	if err != nil {
		var he *HTTPError
		if errors.As(err, &he) && he.Status == http.StatusNotFound {
			return nil, ErrNoGroup
		}
		return nil, err
	}
	return &Group{ID: resp.GroupID, Number: resp.GroupNumber, Name: resp.GroupName}, nil
}

// SelectGroup stores the user's group choice on the backend.
func (t *Timetable) SelectGroup(ctx context.Context, groupID int) error {
	body := fmt.Sprintf(`{"group_id":%d}`, groupID)
	_, err := t.c.do(ctx, http.MethodPost, "/timetable/user/select-group", strings.NewReader(body), requestOptions{
		auth:        authRequired,
		contentType: "application/json",
	})
	return err
}

// UserSchedule refreshes the full normalized schedule for the user's group.
// Failures serve the cached schedule; a missing session serves nothing.
func (t *Timetable) UserSchedule(ctx context.Context) ([]Lesson, error) {
	return t.fetchUserSchedule(ctx, "/timetable/user/schedule")
}

// UserScheduleToday refreshes today's lessons.
func (t *Timetable) UserScheduleToday(ctx context.Context) ([]Lesson, error) {
	return t.fetchUserSchedule(ctx, "/timetable/user/schedule/today")
}

// UserScheduleByDay refreshes one weekday, optionally filtered by week
// parity.
func (t *Timetable) UserScheduleByDay(ctx context.Context, weekday int, week WeekType) ([]Lesson, error) {
	path := fmt.Sprintf("/timetable/user/schedule/day/%d", weekday)
	if week != WeekAny {
		path += "?week_type=" + url.QueryEscape(string(week))
	}
	return t.fetchUserSchedule(ctx, path)
}

func (t *Timetable) fetchUserSchedule(ctx context.Context, path string) ([]Lesson, error) {
	if t.c.session.Token() == "" {
		// Initial session-dependent fetch with no session: intentionally
		// empty, not an error for the UI.
		t.schedule.clear()
		return nil, nil
	}
	return t.schedule.refresh(ctx, func(ctx context.Context) ([]Lesson, error) {
		raw, err := t.c.do(ctx, http.MethodGet, path, nil, requestOptions{auth: authRequired})
		if err != nil {
			return nil, err
		}
		return parseLessons(raw)
	})
}

// GroupSchedule fetches the normalized schedule of an arbitrary group.
// Public, uncached.
func (t *Timetable) GroupSchedule(ctx context.Context, groupID int) ([]Lesson, error) {
	raw, err := t.c.do(ctx, http.MethodGet, fmt.Sprintf("/timetable/group/%d/schedule", groupID), nil, requestOptions{auth: authNone})
	if err != nil {
		return nil, err
	}
	return parseLessons(raw)
}
