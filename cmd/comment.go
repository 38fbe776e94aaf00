package cmd

import (
	"fmt"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
	"github.com/spf13/cobra"
)

// commentCmd groups the annotation operations.
var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Read and write source annotations.",
	Long: `Read and write the annotations attached to a saved source.

Subcommands:
  post   - Attach an annotation to a source
  list   - Show the annotations of a source
  delete - Delete annotations matching a text and type

Examples:
  marshalgo comment post ZTF20aaelulu "rising fast"
  marshalgo comment post ZTF20aaelulu "SN Ia" --comment-type classification
  marshalgo comment list ZTF20aaelulu
  marshalgo comment delete ZTF20aaelulu "rising fast"`,
}

// commentPostCmd attaches an annotation to a source.
var commentPostCmd = &cobra.Command{
	Use:   "post <name> <text>",
	Short: "Attach an annotation to a saved source.",
	Long: `Attach an annotation to a saved source.

The --duplicate-mode flag controls what happens when an identical annotation
already exists: 'no' skips the post, 'add' posts it anyway, and 'edit'
replaces the first existing annotation of the same type.

Examples:
  marshalgo comment post ZTF20aaelulu "rising fast"
  marshalgo comment post ZTF20aaelulu "0.032" --comment-type redshift --duplicate-mode edit`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		name, text := args[0], args[1]
		kind := schema.CommentType(input.CommentType)
		dup := schema.DuplicateMode(input.DuplicateMode)

		session, err := newSession()
		if err != nil {
			contract.LogFatal("Cannot open program session", err)
		}

		if err := session.Comment(rootCtx, name, text, kind, dup); err != nil {
			contract.LogFatal("Cannot post comment", err)
		}
		fmt.Printf("Annotated %s\n", name)
	},
}

// commentListCmd shows the annotations of a source.
var commentListCmd = &cobra.Command{
	Use:     "list <name>",
	Short:   "Show the annotations of a saved source.",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		name := args[0]

		session, err := newSession()
		if err != nil {
			contract.LogFatal("Cannot open program session", err)
		}

		comments, err := session.ReadComments(rootCtx, name)
		if err != nil {
			contract.LogFatal("Cannot read comments", err)
		}
		if err := writer.WriteComments(name, comments, cfg); err != nil {
			contract.LogFatal("Cannot write comments", err)
		}
	},
}

// commentDeleteCmd deletes annotations matching a text and type.
var commentDeleteCmd = &cobra.Command{
	Use:   "delete <name> <text>",
	Short: "Delete the annotations of a source matching a text and type.",
	Long: `Delete every annotation of a source whose text and type match.

Examples:
  marshalgo comment delete ZTF20aaelulu "rising fast"
  marshalgo comment delete ZTF20aaelulu "SN Ia" --comment-type classification`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		name, text := args[0], args[1]
		kind := schema.CommentType(input.CommentType)

		session, err := newSession()
		if err != nil {
			contract.LogFatal("Cannot open program session", err)
		}

		deleted, err := session.DeleteMatchingComments(rootCtx, name, text, kind)
		if err != nil {
			contract.LogFatal("Cannot delete comments", err)
		}
		fmt.Printf("Deleted %d comments from %s\n", deleted, name)
	},
}
