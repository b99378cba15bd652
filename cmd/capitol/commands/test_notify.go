package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var testNotifyCmd = &cobra.Command{
	Use:   "test-notify",
	Short: "Send a test push notification",
	RunE:  runTestNotify,
}

func init() {
	rootCmd.AddCommand(testNotifyCmd)
}

func runTestNotify(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.notifier.Enabled() {
		return fmt.Errorf("notifications are disabled; set NTFY_ENABLED=true and NTFY_TOPIC")
	}

	if !a.notifier.SendTest(context.Background()) {
		return fmt.Errorf("test notification was not sent (check quiet hours and server logs)")
	}

	fmt.Printf("Test notification sent to %s/%s\n", a.cfg.Ntfy.Server, a.cfg.Ntfy.Topic)
	return nil
}
