package commands

import (
	"context"
	"fmt"

	"multazim/internal/config"
)

// BackupCmd implements the 'backup' command: a one-shot store snapshot,
// useful before upgrades or from cron on hosts without the daemon.
type BackupCmd struct {
	Dir string `short:"d" help:"Override the snapshot directory"`
}

func (b *BackupCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	dir := cfg.Backup.Dir
	if b.Dir != "" {
		dir = b.Dir
	}

	path, err := store.Snapshot(context.Background(), dir)
	if err != nil {
		return err
	}
	fmt.Printf("snapshot written to %s\n", path)
	return nil
}
