// Package cmd - campaigns command
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"filmscope/core/campaign"
)

var (
	campPlatform string
	campStatus   string
	campType     string
	campTitle    string
	campContent  string

	listPlatform string
	listStatus   string
	listLimit    int
	listFormat   string
)

// campaignsCmd manages the campaign list
var campaignsCmd = &cobra.Command{
	Use:     "campaigns",
	Aliases: []string{"campaign"},
	Short:   "Manage marketing campaigns",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var campaignsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns, newest first",
	Args:  cobra.NoArgs,
	RunE:  runCampaignsList,
}

var campaignsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a campaign",
	Example: `  filmscope campaigns create --title "Teaser drop" --content "First look at the trailer" \
    --platform youtube --type Video --status Scheduled`,
	Args: cobra.NoArgs,
	RunE: runCampaignsCreate,
}

var campaignsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update the given fields of a campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignsUpdate,
}

var campaignsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignsDelete,
}

var campaignsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show campaign counts by status",
	Args:  cobra.NoArgs,
	RunE:  runCampaignsStats,
}

func init() {
	campaignsCmd.AddCommand(campaignsListCmd, campaignsCreateCmd, campaignsUpdateCmd, campaignsDeleteCmd, campaignsStatsCmd)

	campaignsListCmd.Flags().StringVarP(&listPlatform, "platform", "p", "", "only this platform")
	campaignsListCmd.Flags().StringVarP(&listStatus, "status", "s", "", "only this status")
	campaignsListCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "maximum campaigns to show")
	campaignsListCmd.Flags().StringVarP(&listFormat, "format", "f", "", "output format (cli, json)")

	for _, c := range []*cobra.Command{campaignsCreateCmd, campaignsUpdateCmd} {
		c.Flags().StringVar(&campTitle, "title", "", "campaign title")
		c.Flags().StringVar(&campContent, "content", "", "post copy or description")
		c.Flags().StringVarP(&campPlatform, "platform", "p", "", "platform ("+platformNames()+")")
		c.Flags().StringVar(&campType, "type", "", "content type (Visual, Video, Text, Community)")
		c.Flags().StringVarP(&campStatus, "status", "s", "", "status (Draft, Scheduled, Active)")
	}
}

func platformNames() string {
	names := make([]string, len(campaign.Platforms))
	for i, p := range campaign.Platforms {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func campaignService(cmd *cobra.Command) (*campaign.Service, func(), error) {
	store, err := openStore(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return campaign.NewService(store, nil), func() { _ = store.Close() }, nil
}

func runCampaignsList(cmd *cobra.Command, args []string) error {
	svc, done, err := campaignService(cmd)
	if err != nil {
		return err
	}
	defer done()

	list, err := svc.List(cmd.Context(), campaign.Filter{
		Platform: campaign.Platform(strings.ToLower(listPlatform)),
		Status:   campaign.Status(listStatus),
		Limit:    listLimit,
	})
	if err != nil {
		return userError(err)
	}

	if listFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), list)
	}
	printCampaigns(cmd.OutOrStdout(), list)
	return nil
}

func runCampaignsCreate(cmd *cobra.Command, args []string) error {
	svc, done, err := campaignService(cmd)
	if err != nil {
		return err
	}
	defer done()

	c := campaign.New()
	applyCampaignFlags(cmd, &c)

	saved, msg, err := svc.Save(cmd.Context(), c)
	if err != nil {
		return userError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", msg, saved.ID)
	return nil
}

func runCampaignsUpdate(cmd *cobra.Command, args []string) error {
	svc, done, err := campaignService(cmd)
	if err != nil {
		return err
	}
	defer done()

	c, err := svc.Get(cmd.Context(), args[0])
	if err != nil {
		return userError(err)
	}
	applyCampaignFlags(cmd, c)

	_, msg, err := svc.Save(cmd.Context(), *c)
	if err != nil {
		return userError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

// applyCampaignFlags copies only the flags the user set
func applyCampaignFlags(cmd *cobra.Command, c *campaign.Campaign) {
	flags := cmd.Flags()
	if flags.Changed("title") {
		c.Title = campTitle
	}
	if flags.Changed("content") {
		c.Content = campContent
	}
	if flags.Changed("platform") {
		c.Platform = campaign.Platform(campPlatform)
	}
	if flags.Changed("type") {
		c.Type = campaign.Type(campType)
	}
	if flags.Changed("status") {
		c.Status = campaign.Status(campStatus)
	}
}

func runCampaignsDelete(cmd *cobra.Command, args []string) error {
	svc, done, err := campaignService(cmd)
	if err != nil {
		return err
	}
	defer done()

	msg, err := svc.Delete(cmd.Context(), args[0])
	if err != nil {
		return userError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func runCampaignsStats(cmd *cobra.Command, args []string) error {
	svc, done, err := campaignService(cmd)
	if err != nil {
		return err
	}
	defer done()

	stats, err := svc.Stats(cmd.Context())
	if err != nil {
		return userError(err)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Total:     %d\n", stats.Total)
	fmt.Fprintf(w, "Active:    %d\n", stats.Active)
	fmt.Fprintf(w, "Scheduled: %d\n", stats.Scheduled)
	fmt.Fprintf(w, "Drafts:    %d\n", stats.Drafts)
	return nil
}

func printCampaigns(w io.Writer, list []campaign.Campaign) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No campaigns yet. Create one with: filmscope campaigns create")
		return
	}

	fmt.Fprintf(w, "%-36s  %-2s %-32s %-10s %-10s %s\n", "ID", "", "TITLE", "TYPE", "STATUS", "CREATED")
	for _, c := range list {
		created := ""
		if !c.CreatedAt.IsZero() {
			created = c.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-36s  %s %-32s %-10s %-10s %s\n",
			c.ID,
			c.Platform.Info().Icon,
			truncate(c.Title, 32),
			c.Type,
			c.Status,
			created)
	}
}
