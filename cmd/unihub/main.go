package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/unihub/unihub-client/client"
	"github.com/unihub/unihub-client/internal/config"
	"github.com/unihub/unihub-client/persist"
)

var debug bool

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "unihub",
		Short: "UniHub CLI for the campus backend (auth, events, menu, timetable, assistant)",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			config.InitLogger()
			if debug {
				config.SetLogLevel("debug")
				os.Setenv("UNIHUB_DEBUG", "true")
				log.Debug().Msg("debug logging enabled")
			} else if cfg, err := config.Load(); err == nil {
				config.SetLogLevel(cfg.LogLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newRegisterCmd(),
		newWhoamiCmd(),
		newProfileCmd(),
		newEventsCmd(),
		newMenuCmd(),
		newGroupsCmd(),
		newScheduleCmd(),
		newChatCmd(),
		newPsychCmd(),
		newPingCmd(),
	)
	return rootCmd
}

// newClient builds an SDK client backed by the durable state database.
func newClient() (*client.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	path := cfg.StatePath
	if path == "" {
		path, err = persist.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	kv, err := persist.NewSQLite(path)
	if err != nil {
		return nil, err
	}
	return client.New(cfg.BackendURL, client.WithStorage(kv)), nil
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func newLoginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain a token and fetch the user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Session().Login(cmd.Context(), client.Credentials{Username: username, Password: password}); err != nil {
				return err
			}
			if u := c.Session().User(); u != nil {
				fmt.Printf("logged in as %s (%s %s)\n", u.Username, u.FirstName, u.LastName)
			} else {
				fmt.Println("logged in (profile unavailable, will retry on next call)")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			c.Session().Logout("")
			fmt.Println("logged out")
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var req client.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (does not log in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Session().Register(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Println("registered; run `unihub login` next")
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Username, "username", "", "username")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	cmd.Flags().StringVar(&req.Role, "role", "", "role (optional)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			if c.Session().Token() == "" {
				fmt.Println("not logged in")
				return nil
			}
			u, err := c.Session().FetchUser(cmd.Context())
			if err != nil {
				return err
			}
			printJSON(u)
			if exp, err := c.Session().TokenExpiresAt(); err == nil {
				fmt.Printf("token expires %s\n", exp.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "profile", Short: "Profile operations"}

	var upd client.ProfileUpdate
	update := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			u, err := c.Session().UpdateProfile(cmd.Context(), upd)
			if err != nil {
				return err
			}
			printJSON(u)
			return nil
		},
	}
	update.Flags().StringVar(&upd.Email, "email", "", "email address")
	update.Flags().StringVar(&upd.FirstName, "first-name", "", "first name")
	update.Flags().StringVar(&upd.LastName, "last-name", "", "last name")
	update.Flags().StringVar(&upd.Bio, "bio", "", "bio")
	update.Flags().StringVar(&upd.Phone, "phone", "", "phone")

	avatar := &cobra.Command{
		Use:   "avatar <file>",
		Short: "Upload an avatar image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			u, err := c.Session().UploadAvatar(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			printJSON(u)
			return nil
		},
	}

	cmd.AddCommand(update, avatar)
	return cmd
}

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "events", Short: "Campus events"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List events",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			events, err := c.Events().List(cmd.Context())
			if err != nil {
				return err
			}
			printJSON(events)
			return nil
		},
	}

	withEventID := func(use, short string, run func(ctx context.Context, c *client.Client, id int) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <event-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("event id must be a number: %q", args[0])
				}
				c, err := newClient()
				if err != nil {
					return err
				}
				defer c.Close()
				return run(cmd.Context(), c, id)
			},
		}
	}

	show := withEventID("show", "Show one event", func(ctx context.Context, c *client.Client, id int) error {
		ev, err := c.Events().Get(ctx, id)
		if err != nil {
			return err
		}
		printJSON(ev)
		return nil
	})
	join := withEventID("join", "Enroll in an event", func(ctx context.Context, c *client.Client, id int) error {
		if err := c.Events().Join(ctx, id); err != nil {
			return err
		}
		fmt.Println("enrolled")
		return nil
	})
	leave := withEventID("leave", "Withdraw from an event", func(ctx context.Context, c *client.Client, id int) error {
		if err := c.Events().Leave(ctx, id); err != nil {
			return err
		}
		fmt.Println("withdrawn")
		return nil
	})
	participants := withEventID("participants", "List event participants", func(ctx context.Context, c *client.Client, id int) error {
		ps, err := c.Events().Participants(ctx, id)
		if err != nil {
			return err
		}
		printJSON(ps)
		return nil
	})
	gallery := withEventID("gallery", "List event gallery images", func(ctx context.Context, c *client.Client, id int) error {
		urls, err := c.Events().GalleryImages(ctx, id)
		if err != nil {
			return err
		}
		printJSON(urls)
		return nil
	})

	cmd.AddCommand(list, show, join, leave, participants, gallery)
	return cmd
}

func newMenuCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "menu", Short: "Canteen menu"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List daily menus",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			menus, err := c.Menu().DailyMenus(cmd.Context())
			if err != nil {
				return err
			}
			printJSON(menus)
			return nil
		},
	}

	dishes := &cobra.Command{
		Use:   "dishes [menu-id]",
		Short: "List dishes, or the dishes of one menu",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			if len(args) == 0 {
				dishes, err := c.Menu().Dishes(cmd.Context())
				if err != nil {
					return err
				}
				printJSON(dishes)
				return nil
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("menu id must be a number: %q", args[0])
			}
			dishes, err := c.Menu().DishesForMenu(cmd.Context(), id)
			if err != nil {
				return err
			}
			printJSON(dishes)
			return nil
		},
	}

	cmd.AddCommand(list, dishes)
	return cmd
}

func newGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "groups", Short: "Timetable groups"}

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search groups by number or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			groups, err := c.Timetable().SearchGroups(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printJSON(groups)
			return nil
		},
	}

	sel := &cobra.Command{
		Use:   "select <group-id>",
		Short: "Select the user's group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("group id must be a number: %q", args[0])
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Timetable().SelectGroup(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("group selected")
			return nil
		},
	}

	current := &cobra.Command{
		Use:   "current",
		Short: "Show the user's selected group",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			g, err := c.Timetable().UserGroup(cmd.Context())
			if err != nil {
				return err
			}
			printJSON(g)
			return nil
		},
	}

	cmd.AddCommand(search, sel, current)
	return cmd
}

func newScheduleCmd() *cobra.Command {
	var day int
	var week string
	var today bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show the user's normalized schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			t := c.Timetable()
			var lessons []client.Lesson
			switch {
			case today:
				lessons, err = t.UserScheduleToday(cmd.Context())
			case day >= 0:
				lessons, err = t.UserScheduleByDay(cmd.Context(), day, client.WeekType(week))
			default:
				lessons, err = t.UserSchedule(cmd.Context())
			}
			if err != nil {
				return err
			}
			printJSON(lessons)
			return nil
		},
	}
	cmd.Flags().IntVar(&day, "day", -1, "weekday (0-6)")
	cmd.Flags().StringVar(&week, "week", "", "week parity filter: odd or even")
	cmd.Flags().BoolVar(&today, "today", false, "today's lessons only")
	return cmd
}

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "chat", Short: "AI assistant"}

	var chatContext string
	send := &cobra.Command{
		Use:   "send <message>",
		Short: "Send a message to the assistant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			c.Assistant().SetContext(chatContext)
			answer, err := c.Assistant().Send(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		},
	}
	send.Flags().StringVar(&chatContext, "context", "", "UI context to ground the answer")

	history := &cobra.Command{
		Use:   "history",
		Short: "Show the assistant conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Assistant().LoadHistory(cmd.Context()); err != nil {
				return err
			}
			for _, m := range c.Assistant().Conversation().Messages() {
				fmt.Printf("%s: %s\n", m.Sender, m.Content)
			}
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Clear the assistant history",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Assistant().ClearHistory(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("history cleared")
			return nil
		},
	}

	hints := &cobra.Command{
		Use:   "hints <context>",
		Short: "Show suggested prompts for a UI context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			hints, err := c.Assistant().Hints(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printJSON(hints)
			return nil
		},
	}

	cmd.AddCommand(send, history, clear, hints)
	return cmd
}

func newPsychCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "psych <message>",
		Short: "Talk to the virtual psychologist (offline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()
			answer, err := c.Psychologist().Send(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		},
	}
}

func newPingCmd() *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check backend reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			probe := func() error {
				req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, cfg.BackendURL+"/events", nil)
				if err != nil {
					return backoff.Permanent(err)
				}
				resp, err := http.DefaultClient.Do(req)
				if err != nil {
					return err
				}
				resp.Body.Close()
				if resp.StatusCode >= 500 {
					return fmt.Errorf("backend unhealthy: status %d", resp.StatusCode)
				}
				return nil
			}
			if wait > 0 {
				b := backoff.NewExponentialBackOff()
				b.MaxElapsedTime = wait
				if err := backoff.Retry(probe, backoff.WithContext(b, cmd.Context())); err != nil {
					return err
				}
			} else if err := probe(); err != nil {
				return err
			}
			fmt.Println("backend reachable")
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 0, "keep probing with backoff until reachable or the duration elapses")
	return cmd
}
