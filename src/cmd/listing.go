package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ProjectsTask/EasySwapListing/src/config"
	"github.com/ProjectsTask/EasySwapListing/src/service/page"
	"github.com/ProjectsTask/EasySwapListing/src/service/svc"
	"github.com/ProjectsTask/EasySwapListing/src/service/v1"
)

var offerAmount string

// ShowCmd 打印挂单详情
var ShowCmd = &cobra.Command{
	Use:   "show <listing-id>",
	Short: "show a listing.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListing(cmd, args[0], nil)
	},
}

// BuyCmd 购买挂单
var BuyCmd = &cobra.Command{
	Use:   "buy <listing-id>",
	Short: "buy one unit of a direct listing.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListing(cmd, args[0], func(ctx context.Context, p *page.Page) page.Notice {
			return p.Buy(ctx)
		})
	},
}

// OfferCmd 报价, 只有拍卖时对拍卖出价
var OfferCmd = &cobra.Command{
	Use:   "offer <listing-id>",
	Short: "make an offer on a listing, or bid when only an auction exists.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListing(cmd, args[0], func(ctx context.Context, p *page.Page) page.Notice {
			p.SetBidAmount(offerAmount)
			return p.MakeOffer(ctx)
		})
	},
}

// runListing 加载挂单, 执行动作后打印页面状态, 提示写到 stderr
func runListing(cmd *cobra.Command, listingID string, action func(ctx context.Context, p *page.Page) page.Notice) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.UnmarshalCmdConfig()
	if err != nil {
		return err
	}
	serverCtx, err := svc.NewServiceContext(ctx, cfg)
	if err != nil {
		return err
	}
	defer serverCtx.Close()

	p := serverCtx.NewPage(cfg.Page.FetchTimeout(), page.WriterNotifier{W: cmd.ErrOrStderr()})
	defer p.Close()

	p.Navigate(ctx, listingID)
	if err := p.Wait(ctx); err != nil {
		return errors.Wrap(err, "failed on load listing")
	}

	var notice *page.Notice
	if action != nil {
		n := action(ctx, p)
		notice = &n
	}

	if err := printListing(cmd.OutOrStdout(), serverCtx.ChainID(), p.View()); err != nil {
		return err
	}
	if notice != nil && notice.Kind == page.NoticeFailure {
		return errors.New(notice.Message)
	}
	return nil
}

func printListing(w io.Writer, chainID int64, v page.View) error {
	raw, err := json.MarshalIndent(service.BuildListingView(chainID, v), "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed on marshal listing")
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

func init() {
	OfferCmd.Flags().StringVar(&offerAmount, "amount", "", "offer amount in whole tokens, e.g. 0.05")
	rootCmd.AddCommand(ShowCmd, BuyCmd, OfferCmd)
}
