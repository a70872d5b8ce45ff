package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/study-engine/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and manage stored document sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sessionStore()
		if err != nil {
			return err
		}
		defer store.Close()

		infos, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No sessions stored.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tFILE\tWORDS\tTOPIC\tUPDATED")
		for _, info := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
				info.ID, info.FileName, info.WordCount, info.Topic,
				info.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a session's details",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := session.DefaultID
		if len(args) == 1 {
			id = args[0]
		}

		store, err := sessionStore()
		if err != nil {
			return err
		}
		defer store.Close()

		sess, err := store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("Session: %s\n", sess.ID)
		fmt.Printf("  file:    %s\n", sess.FileName)
		fmt.Printf("  status:  %s\n", sess.Extraction.Status)
		fmt.Printf("  words:   %d\n", sess.Extraction.WordCount)
		fmt.Printf("  pages:   %d extracted of %d\n", sess.Extraction.ExtractedPages, sess.Extraction.PageCount)
		fmt.Printf("  methods: %v\n", sess.Extraction.MethodsUsed)
		fmt.Printf("  topic:   %s\n", sess.Profile.Topic)
		fmt.Printf("  updated: %s\n", sess.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sessionStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted session %s\n", args[0])
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionListCmd, sessionShowCmd, sessionDeleteCmd)
	rootCmd.AddCommand(sessionCmd)
}
