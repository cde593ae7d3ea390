package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"iter"
	"log/slog"
	"os"

	"github.com/poiesic/titlegate"
	"github.com/poiesic/titlegate/ai"
	"github.com/poiesic/titlegate/storage"
)

var titles = []string{
	"The Morning Herald",
	"Daily Chronicle",
	"Evening Standard Review",
	"The Coastal Observer",
	"Midland Gazette",
	"The Weekly Ledger",
	"Northern Star Tribune",
	"The Riverside Courier",
	"Metro Business Digest",
	"The Highland Examiner",
	"Sunrise Bulletin",
	"The Harbor Post",
	"Valley Voice Weekly",
	"The Capital Register",
	"Orchard Town Crier",
	"The Plains Dispatch",
	"Lakeside Mirror",
	"The Summit Record",
	"Garden City Journal",
	"The Meadow Sentinel",
	"Crescent Bay Times",
	"The Prairie Monitor",
	"Ironbridge Inquirer",
	"The Seaboard Argus",
	"Willow Creek News",
	"The Granite Observer",
	"Foothill Forum",
	"The Estuary Press",
	"Copperfield Courant",
	"The Beacon Weekly",
	"Silver Birch Review",
	"The Quarry Telegraph",
	"Marsh Town Messenger",
	"The Old Mill Gazette",
	"Harvest Moon Quarterly",
	"The Ferry Landing Post",
	"Stonebridge Standard",
	"The Aviary Digest",
	"Clearwater Clarion",
	"The Dune Road Journal",
	"Pemberton Advocate",
	"The Waterfall Weekly",
	"Lantern Hill Herald",
	"The Cobblestone Courier",
	"Windmill Valley Voice",
	"The Pinewood Periodical",
	"Saltmarsh Spectator",
	"The Tidewater Tribune",
	"Juniper Junction Journal",
	"The Bellfield Banner",
	"Mosswood Magazine",
	"The Fenland Free Press",
	"Amber Coast Almanac",
	"The Drover's Dispatch",
	"Kingfisher Quarterly",
	"The Lighthouse Ledger",
	"Bramble Lane Bulletin",
	"The Causeway Chronicle",
	"Heron's Landing Herald",
	"The Saddleback Sentinel",
}

var (
	seedFileName = flag.String("src", "", "file of seed titles, one per line")
	dbPath       = flag.String("db", "./titles_db", "path to BadgerDB database directory")
	snapshotDir  = flag.String("snapshot", "", "directory for index snapshots")
	host         = flag.String("host", "http://localhost:11434/v1", "embedding service host URL")
	model        = flag.String("model", "paraphrase-multilingual-minilm", "embedding model name")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// seed registers every title directly, bypassing verification: seed data
// is the trusted baseline the verifier compares candidates against.
func seed(ctx context.Context, engine *titlegate.Engine, source iter.Seq[string]) (int, error) {
	added := 0
	for line := range source {
		if line == "" {
			continue
		}
		if err := engine.Index().Insert(ctx, line); err != nil {
			return added, err
		}
		if _, err := engine.Titles().AddTitle(ctx, line); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			return added, err
		}
		added++
	}
	return added, nil
}

func main() {
	engine, err := titlegate.NewEngine(*dbPath,
		titlegate.WithAIConfig(ai.NewConfig(
			ai.WithHost(*host),
			ai.WithEmbeddingModel(*model),
		)),
		titlegate.WithSnapshotDir(*snapshotDir))
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	ctx := context.Background()
	if err := engine.Hydrate(ctx); err != nil {
		panic(err)
	}

	// Determine source of seed data
	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(titles)
	}

	added, err := seed(ctx, engine, source)
	if err != nil {
		panic(err)
	}
	slog.Info("seeding complete", "added", added, "indexed", engine.Index().Size())

	if err := engine.WriteSnapshot(); err != nil {
		panic(err)
	}
}
