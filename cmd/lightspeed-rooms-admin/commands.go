package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/antonmedv/expr/vm"
	"github.com/spf13/cobra"
	"github.com/tcriess/lightspeed-rooms/auth"
	"github.com/tcriess/lightspeed-rooms/filter"
	"github.com/tcriess/lightspeed-rooms/globals"
	"github.com/tcriess/lightspeed-rooms/persistence"
	"github.com/tcriess/lightspeed-rooms/room"
	"github.com/tcriess/lightspeed-rooms/types"
)

type admin struct {
	persister persistence.Persister
	rooms     *room.Service
	accounts  *auth.Service
	out       io.Writer
	in        io.Reader
}

// userDefinition is the JSON accepted by "set user".
type userDefinition struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (a *admin) print(v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		globals.AppLogger.Error("could not marshal result", "error", err)
		return err
	}
	_, err = fmt.Fprintln(a.out, string(raw))
	return err
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return uint(id), nil
}

func (a *admin) rootCmd() *cobra.Command {
	ctx := context.Background()

	var cmdShow = &cobra.Command{
		Use:   "show",
		Short: "Show rooms, users or topics",
		Long:  `show is for printing user, room or topic information.`,
	}
	var roomFilter string
	var cmdShowRooms = &cobra.Command{
		Use:   "rooms",
		Short: "Show rooms",
		Long: `show rooms lists all rooms. --filter restricts the listing with an expression over
Id, Name, Description, Topic, Price, Host, HostEmail, Participants and Created, f.e.
'Topic == "Go" && Participants > 2'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var prog *vm.Program
			if roomFilter != "" {
				var err error
				prog, err = filter.CompileRoomFilter(roomFilter)
				if err != nil {
					globals.AppLogger.Error("could not compile filter", "error", err)
					return err
				}
			}
			rooms, err := a.persister.GetRooms(ctx)
			if err != nil {
				globals.AppLogger.Error("could not get rooms", "error", err)
				return err
			}
			return a.print(filter.Rooms(rooms, filter.RoomFilter(prog)))
		},
	}
	cmdShowRooms.Flags().StringVar(&roomFilter, "filter", "", "filter expression")
	var cmdShowRoom = &cobra.Command{
		Use:   "room [room id]",
		Short: "Show room",
		Long:  `show room prints the room with the given id together with its messages and participants.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			view, err := a.rooms.Room(ctx, id)
			if err != nil {
				globals.AppLogger.Error("could not get room", "room", id, "error", err)
				return err
			}
			return a.print(view)
		},
	}
	var cmdShowUsers = &cobra.Command{
		Use:   "users",
		Short: "Show users",
		Long:  `shows a listing of all users.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.persister.GetUsers(ctx)
			if err != nil {
				globals.AppLogger.Error("could not get users", "error", err)
				return err
			}
			accounts := make([]*types.Account, len(users))
			for i, user := range users {
				accounts[i] = user.Account()
			}
			return a.print(accounts)
		},
	}
	var cmdShowUser = &cobra.Command{
		Use:   "user [user id]",
		Short: "Show user",
		Long:  `show user prints the profile of the user with the given id: hosted rooms, messages and topics.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			view, err := a.rooms.Profile(ctx, id)
			if err != nil {
				globals.AppLogger.Error("could not get user", "user", id, "error", err)
				return err
			}
			return a.print(view)
		},
	}
	var cmdShowTopics = &cobra.Command{
		Use:   "topics [query]",
		Short: "Show topics",
		Long:  `show topics lists the topics whose name contains the query, ignoring case.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := ""
			if len(args) > 0 {
				q = args[0]
			}
			topics, err := a.rooms.Topics(ctx, q)
			if err != nil {
				globals.AppLogger.Error("could not get topics", "error", err)
				return err
			}
			return a.print(topics)
		},
	}
	var cmdDelete = &cobra.Command{
		Use:   "delete",
		Short: "delete room",
		Long:  `delete removes the room with a given room id.`,
	}
	var cmdDeleteRoom = &cobra.Command{
		Use:   "room [room id]",
		Short: "Delete room",
		Long:  `delete room removes the room with the given id and all of its messages, regardless of its host.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_, err = a.rooms.RemoveRoom(ctx, id)
			if err != nil {
				globals.AppLogger.Error("could not delete room", "room", id, "error", err)
				return err
			}
			return nil
		},
	}
	var cmdSet = &cobra.Command{
		Use:   "set",
		Short: "create user",
		Long:  `set creates a user.`,
	}
	var cmdSetUser = &cobra.Command{
		Use:   "user [user definition]",
		Short: "Set user",
		Long: `set user creates a user with the given definition, a JSON object with email, username, name and password.
If the user definition is "-", it is read from STDIN.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader
			if args[0] == "-" {
				r = a.in
				if r == nil {
					r = os.Stdin
				}
			} else {
				r = bytes.NewReader([]byte(args[0]))
			}
			def := userDefinition{}
			err := json.NewDecoder(r).Decode(&def)
			if err != nil {
				globals.AppLogger.Error("could not decode user", "error", err)
				return err
			}
			user, err := a.accounts.Register(ctx, auth.RegisterInput{
				Name:      def.Name,
				Username:  def.Username,
				Email:     def.Email,
				Password1: def.Password,
				Password2: def.Password,
			})
			if err != nil {
				globals.AppLogger.Error("could not create user", "error", err)
				return err
			}
			return a.print(user)
		},
	}
	var rootCmd = &cobra.Command{Use: "lightspeed-rooms-admin", SilenceUsage: true}
	rootCmd.SetOut(a.out)
	rootCmd.AddCommand(cmdShow)
	rootCmd.AddCommand(cmdDelete)
	rootCmd.AddCommand(cmdSet)
	cmdShow.AddCommand(cmdShowRooms, cmdShowRoom, cmdShowUsers, cmdShowUser, cmdShowTopics)
	cmdDelete.AddCommand(cmdDeleteRoom)
	cmdSet.AddCommand(cmdSetUser)
	return rootCmd
}
