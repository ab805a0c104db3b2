package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Inspect and switch task contexts",
	Long: `Tags are independent task lists inside one task document ("master",
"feature-auth", ...). Legacy single-list documents behave as a lone master
tag.`,
	RunE: runTagList,
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available tags",
	RunE:  runTagList,
}

var tagSwitchCmd = &cobra.Command{
	Use:   "switch <name>",
	Short: "Make a different tag current",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagSwitch,
}

var tagCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new empty tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagCreate,
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a tag and its tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagDelete,
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagListCmd, tagSwitchCmd, tagCreateCmd, tagDeleteCmd)
}

func runTagList(cmd *cobra.Command, args []string) error {
	svc := GetService(nil)
	tc, err := svc.TagContext(context.Background())
	if err != nil {
		return fmt.Errorf("tag context: %w", err)
	}
	for _, name := range tc.AvailableTags {
		marker := " "
		if name == tc.CurrentTag {
			marker = okStyle.Render("*")
		}
		fmt.Printf("%s %s\n", marker, name)
	}
	if !tc.IsTaggedFormat {
		fmt.Println(dimStyle.Render("(document is not in tagged format; only master exists)"))
	}
	return nil
}

func runTagSwitch(cmd *cobra.Command, args []string) error {
	svc := GetService(nil)
	if err := svc.SwitchTag(context.Background(), args[0]); err != nil {
		return fmt.Errorf("switch tag: %w", err)
	}
	cmd.Printf("Switched to tag %q.\n", args[0])
	return nil
}

func runTagCreate(cmd *cobra.Command, args []string) error {
	svc := GetService(nil)
	if err := svc.CreateTag(context.Background(), args[0]); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	cmd.Printf("Created tag %q.\n", args[0])
	return nil
}

func runTagDelete(cmd *cobra.Command, args []string) error {
	svc := GetService(nil)
	if err := svc.DeleteTag(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	cmd.Printf("Deleted tag %q.\n", args[0])
	return nil
}
