package client

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Menu operations - public daily menus and dishes, both cached.
type Menu struct {
	c      *Client
	menus  *Cache[DailyMenu]
	dishes *Cache[Dish]
}

func newMenu(c *Client) *Menu {
	return &Menu{
		c:      c,
		menus:  newCache[DailyMenu]("daily_menus"),
		dishes: newCache[Dish]("dishes"),
	}
}

// DailyMenus refreshes the daily-menu collection, serving cached menus on
// failure.
func (m *Menu) DailyMenus(ctx context.Context) ([]DailyMenu, error) {
	return m.menus.refresh(ctx, func(ctx context.Context) ([]DailyMenu, error) {
		var menus []DailyMenu
		if err := m.c.getJSON(ctx, "/menu", authNone, &menus); err != nil {
			return nil, err
		}
		return menus, nil
	})
}

// Dishes refreshes the dish collection, serving cached dishes on failure.
func (m *Menu) Dishes(ctx context.Context) ([]Dish, error) {
	return m.dishes.refresh(ctx, func(ctx context.Context) ([]Dish, error) {
		var dishes []Dish
		if err := m.c.getJSON(ctx, "/dish", authNone, &dishes); err != nil {
			return nil, err
		}
		return dishes, nil
	})
}

// CachedMenus returns the daily-menu collection without a network call.
func (m *Menu) CachedMenus() *Cache[DailyMenu] { return m.menus }

// CachedDishes returns the dish collection without a network call.
func (m *Menu) CachedDishes() *Cache[Dish] { return m.dishes }

// DailyMenu fetches one menu by ID.
func (m *Menu) DailyMenu(ctx context.Context, id int) (*DailyMenu, error) {
	var menu DailyMenu
	if err := m.c.getJSON(ctx, fmt.Sprintf("/menu/%d", id), authNone, &menu); err != nil {
		return nil, err
	}
	return &menu, nil
}

// Dish fetches one dish by ID.
func (m *Menu) Dish(ctx context.Context, id int) (*Dish, error) {
	var dish Dish
	if err := m.c.getJSON(ctx, fmt.Sprintf("/dish/%d", id), authNone, &dish); err != nil {
		return nil, err
	}
	return &dish, nil
}

// DishesForMenu resolves a menu's dish IDs to dishes. Individual dish
// failures are dropped, mirroring the rest of the read policy.
func (m *Menu) DishesForMenu(ctx context.Context, menuID int) ([]Dish, error) {
	menu, err := m.DailyMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}
	dishes := make([]Dish, 0, len(menu.Dishes))
	for _, id := range menu.Dishes {
		dish, err := m.Dish(ctx, id)
		if err != nil {
			log.Warn().Err(err).Int("dish_id", id).Msg("skipping dish")
			continue
		}
		dishes = append(dishes, *dish)
	}
	return dishes, nil
}
