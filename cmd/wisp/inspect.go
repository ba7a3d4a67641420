package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"wisp/internal"
	"wisp/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"
)

const maxDetailLength = 60

func newInspectCommand(flags *rootFlags) *cobra.Command {
	var dbPath, prefix string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Dump the raw content of the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				config, err := internal.Load(flags.envFile)
				if err != nil {
					return err
				}
				dbPath = config.BadgerFilepath
			}

			// BypassLockGuard allows reading while a chat session holds the lock
			db, err := badger.Open(badger.DefaultOptions(dbPath).
				WithReadOnly(true).
				WithBypassLockGuard(true).
				WithLoggingLevel(badger.WARNING))
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			return inspect(db, prefix, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the badger directory (defaults to BADGER_FILEPATH)")
	cmd.Flags().StringVar(&prefix, "prefix", "doc:", "Key prefix to scan")
	return cmd
}

func inspect(db *badger.DB, prefix string, out io.Writer) error {
	table := newTable(out, []string{"Collection", "ID", "Created", "Detail"})

	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			err := item.Value(func(v []byte) error {
				table.Append(inspectRow(key, v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	return nil
}

// inspectRow never fails: keys outside the document layout are shown raw.
func inspectRow(key, value []byte) []string {
	collection, id, ok := storage.ParseKey(key)
	if !ok {
		return []string{"-", string(key), "", ""}
	}
	doc, err := storage.DecodeDocument(value)
	if err != nil {
		return []string{collection, id, "", "undecodable: " + err.Error()}
	}

	names := make([]string, 0, len(doc.Fields))
	for name := range doc.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, doc.Fields[name]))
	}

	return []string{collection, id, doc.CreateTime.Format("2006-01-02 15:04:05"), shorten(strings.Join(parts, " "))}
}

func shorten(s string) string {
	r := []rune(s)
	if len(r) <= maxDetailLength {
		return s
	}
	return string(r[:maxDetailLength-3]) + "..."
}
