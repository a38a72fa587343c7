package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"cosmossdk.io/log"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/Modenjaya/og-upload/pkg/content"
	"github.com/Modenjaya/og-upload/pkg/identity"
	"github.com/Modenjaya/og-upload/pkg/indexer"
	"github.com/Modenjaya/og-upload/pkg/netclient"
	"github.com/Modenjaya/og-upload/pkg/orchestrator"
	"github.com/Modenjaya/og-upload/pkg/pollwait"
	"github.com/Modenjaya/og-upload/pkg/registrar"
	"github.com/Modenjaya/og-upload/pkg/types"
)

const countPrompt = "How many files to upload per wallet? "

func runUploads(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := resolve(cmd)
	if err != nil {
		return err
	}

	// An interrupt ends the run cleanly: in-flight requests and sleeps are
	// cancelled and the process exits 0.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ids, err := identity.LoadIdentities(cfg.KeysFile)
	if err != nil {
		return err
	}
	proxies := identity.LoadProxies(cfg.ProxyFile, logger)
	logger.Info("loaded configuration", "wallets", len(ids), "proxies", len(proxies))

	chain, err := registrar.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return types.ErrConfiguration.Wrapf("dial %s: %s", cfg.RPCURL, err)
	}
	defer chain.Close()

	reg, err := registrar.New(chain, registrar.Config{
		ChainID:         new(big.Int).SetUint64(cfg.ChainID),
		Contract:        cfg.Contract,
		MinBalance:      cfg.MinBalance,
		StorageFee:      cfg.StorageFee,
		DefaultGasLimit: cfg.DefaultGasLimit,
		ExplorerURL:     cfg.ExplorerURL,
	}, pollwait.RealClock(), logger)
	if err != nil {
		return err
	}
	if _, err := reg.CheckNetwork(ctx); err != nil {
		return interrupted(ctx, logger, err)
	}

	printWallets(cmd.OutOrStdout(), ids)

	count := cfg.Count
	if count == 0 {
		if count, err = promptCount(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			return interrupted(ctx, logger, err)
		}
	}

	clients := netclient.NewFactory(proxies, cfg.HTTPTimeout, types.DefaultReferer, logger)
	index := indexer.NewClient(cfg.IndexerURL, clients, logger)
	producer := content.NewProducer(
		content.NewImageFetcher(content.DefaultImageSources, clients, logger),
		content.NewDeduper(index, logger),
	)
	orch := orchestrator.New(
		identity.NewRotator(ids),
		producer,
		index,
		reg,
		pollwait.RealClock(),
		orchestrator.DefaultConfig(),
		logger,
	)

	sum, err := orch.Run(ctx, count)
	if err != nil {
		return interrupted(ctx, logger, err)
	}
	printSummary(cmd.OutOrStdout(), sum)
	return nil
}

// interrupted turns a failure caused by a shutdown signal into a clean exit.
func interrupted(ctx context.Context, logger log.Logger, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		logger.Info("shutting down gracefully")
		return nil
	}
	return err
}

// promptCount asks for the per-wallet count. The read runs aside so that a
// cancelled ctx returns at once even while stdin stays silent.
func promptCount(ctx context.Context, in io.Reader, out io.Writer) (int, error) {
	fmt.Fprint(out, countPrompt)

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		answers <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case a := <-answers:
		if a.err != nil && !(errors.Is(a.err, io.EOF) && a.line != "") {
			return 0, types.ErrConfiguration.Wrapf("read upload count: %s", a.err)
		}
		return parseCount(a.line)
	}
}

var decimalCount = regexp.MustCompile(`^[0-9]+$`)

// parseCount accepts decimal digits only. Leading zeros never mean octal.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !decimalCount.MatchString(s) {
		return 0, types.ErrConfiguration.Wrapf("invalid upload count %q", s)
	}
	digits := strings.TrimLeft(s, "0")
	if digits == "" {
		digits = "0"
	}
	n, err := cast.ToIntE(digits)
	if err != nil || n <= 0 {
		return 0, types.ErrConfiguration.Wrapf("invalid upload count %q", s)
	}
	return n, nil
}

func printWallets(w io.Writer, ids []identity.Identity) {
	fmt.Fprintf(w, "Wallets (%d):\n", len(ids))
	for _, id := range ids {
		fmt.Fprintf(w, "  [%d] %s\n", id.Index+1, id.Address.Hex())
	}
}

func printSummary(w io.Writer, s orchestrator.Summary) {
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Wallets:          %d\n", s.Identities)
	fmt.Fprintf(w, "  Files per wallet: %d\n", s.PerIdentity)
	fmt.Fprintf(w, "  Attempted:        %d\n", s.Attempted)
	fmt.Fprintf(w, "  Successful:       %d\n", s.Successful)
	fmt.Fprintf(w, "  Failed:           %d\n", s.Failed)
	fmt.Fprintf(w, "  Skipped wallets:  %d\n", s.Skipped)
}
