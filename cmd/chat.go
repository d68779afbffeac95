package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/product-advisor/internal/advisor"
	"github.com/ziadkadry99/product-advisor/internal/catalog"
	"github.com/ziadkadry99/product-advisor/internal/llm"
	"github.com/ziadkadry99/product-advisor/internal/progress"
	"github.com/ziadkadry99/product-advisor/internal/render"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the advisor in the terminal",
	Long: `Starts an interactive chat with the advisor using the products selected with
the pick command.

Commands:
  /routine         build an AM routine from the selected products
  /select <id>     toggle a product
  /clear           clear the selection
  /web on|off      include live web references
  /quit            exit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().Int("width", render.DefaultWidth, "word-wrap width for responses")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	width, _ := cmd.Flags().GetInt("width")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	adv, err := app.newAdvisor(ctx, cliSession)
	if err != nil {
		fmt.Println(catalog.PlaceholderLoadError)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, adv.Selection().Summary)
	fmt.Fprintln(out, "Type /routine to build a routine or ask a question. /quit exits.")

	spinner := progress.NewSpinner(os.Stderr)
	for {
		prompt := promptui.Prompt{Label: "you"}
		line, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := runChatCommand(ctx, out, adv, spinner, width, line); quit {
				return nil
			}
			continue
		}

		spinner.Start("Thinking...")
		msgs := adv.SendChat(ctx, line)
		spinner.Stop()
		printMessages(out, msgs, width)
	}
}

// runChatCommand handles a slash command and reports whether to exit.
func runChatCommand(ctx context.Context, out io.Writer, adv *advisor.Advisor, spinner progress.Spinner, width int, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/routine":
		spinner.Start("Building routine...")
		msgs := adv.GenerateRoutine(ctx)
		spinner.Stop()
		printMessages(out, msgs, width)

	case "/select":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: /select <id>")
			return false
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Fprintf(out, "invalid product id %q\n", fields[1])
			return false
		}
		view, err := adv.ToggleProduct(ctx, id)
		if err != nil {
			fmt.Fprintf(out, "no product with id %d\n", id)
			return false
		}
		fmt.Fprintln(out, view.Summary)

	case "/clear":
		fmt.Fprintln(out, adv.ClearSelection(ctx).Summary)

	case "/web":
		if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
			fmt.Fprintln(out, "usage: /web on|off")
			return false
		}
		adv.SetWebSearch(fields[1] == "on")
		fmt.Fprintf(out, "web search %s\n", fields[1])

	default:
		fmt.Fprintf(out, "unknown command %s\n", fields[0])
	}
	return false
}

// printMessages renders advisor replies with glamour and notices as plain
// lines. The user's own message is not echoed.
func printMessages(out io.Writer, msgs []advisor.ChatMessage, width int) {
	for _, m := range msgs {
		switch m.Role {
		case llm.RoleUser:
			continue
		case llm.RoleSystem:
			fmt.Fprintf(out, "» %s\n", m.Text)
		default:
			rendered, err := render.Terminal(m.Text, width)
			if err != nil {
				rendered = m.Text + "\n"
			}
			fmt.Fprint(out, rendered)
		}
	}
}
