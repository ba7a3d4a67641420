package moderation

import (
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const blacklistPrefix = "blacklist:"

// SeedBlacklist stores the words as "blacklist:{word}" keys, values are empty.
func SeedBlacklist(db *badger.DB, words []string) error {
	wb := db.NewWriteBatch()
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if err := wb.Set([]byte(blacklistPrefix+word), nil); err != nil {
			wb.Cancel()
			return err
		}
	}
	return wb.Flush()
}

// LoadBlacklist reads every censored word back, keys only.
func LoadBlacklist(db *badger.DB) ([]string, error) {
	var words []string
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(blacklistPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			words = append(words, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return words, err
}

// SplitWords parses a comma separated list as found in the environment.
func SplitWords(csv string) []string {
	var words []string
	for _, w := range strings.Split(csv, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}
