package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/kbchat-core/internal/adapters/driven/openai"
	"github.com/custodia-labs/kbchat-core/internal/config"
	"github.com/custodia-labs/kbchat-core/internal/core/domain"
)

// kbchat-ingest manages knowledge-base collections on the remote service:
//
//	kbchat-ingest create -name "Statutes"
//	kbchat-ingest upload -collection vs-... -dir ./docs [-classification public]
//	kbchat-ingest list [-collection vs-...]
//	kbchat-ingest clear -collection vs-...
func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	if err != nil {
		log.Fatalf("Failed to create OpenAI client: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	switch os.Args[1] {
	case "create":
		runCreate(ctx, client, os.Args[2:])
	case "upload":
		runUpload(ctx, client, os.Args[2:])
	case "list":
		runList(ctx, client, os.Args[2:])
	case "clear":
		runClear(ctx, client, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kbchat-ingest <create|upload|list|clear> [flags]")
}

func runCreate(ctx context.Context, client *openai.Client, args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "collection name")
	fs.Parse(args)

	if *name == "" {
		log.Fatal("create: -name is required")
	}

	col, err := client.CreateCollection(ctx, *name)
	if err != nil {
		log.Fatalf("Failed to create collection: %v", err)
	}
	fmt.Printf("created collection %s (%s)\n", col.ID, col.Name)
}

func runUpload(ctx context.Context, client *openai.Client, args []string) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	collection := fs.String("collection", "", "collection id")
	dir := fs.String("dir", "", "directory of documents to upload")
	classification := fs.String("classification", string(domain.ClassificationPublic), "audience tag for all uploads")
	source := fs.String("source", "", "optional source label")
	fs.Parse(args)

	if *collection == "" || *dir == "" {
		log.Fatal("upload: -collection and -dir are required")
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Failed to read directory: %v", err)
	}

	ingestedBy := "kbchat-ingest"
	if host, err := os.Hostname(); err == nil {
		ingestedBy = fmt.Sprintf("kbchat-ingest@%s", host)
	}

	uploaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(*dir, entry.Name())

		f, err := os.Open(path)
		if err != nil {
			log.Printf("skipping %s: %v", entry.Name(), err)
			continue
		}

		fileID, err := client.UploadFile(ctx, entry.Name(), f)
		f.Close()
		if err != nil {
			log.Printf("failed to upload %s: %v", entry.Name(), err)
			continue
		}

		attrs := map[string]any{
			domain.AttrClassification: *classification,
			domain.AttrPath:           path,
			domain.AttrIngestedAt:     time.Now().UTC().Format(time.RFC3339),
			domain.AttrIngestedBy:     ingestedBy,
			domain.AttrPipeline:       "kbchat-ingest/1",
		}
		if *source != "" {
			attrs[domain.AttrSource] = *source
		}

		if err := client.AttachFile(ctx, *collection, fileID, attrs); err != nil {
			log.Printf("failed to attach %s: %v", entry.Name(), err)
			continue
		}

		fmt.Printf("uploaded %s as %s\n", entry.Name(), fileID)
		uploaded++
	}
	fmt.Printf("done: %d file(s) attached to %s\n", uploaded, *collection)
}

func runList(ctx context.Context, client *openai.Client, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	collection := fs.String("collection", "", "list the files of one collection instead")
	fs.Parse(args)

	if *collection == "" {
		collections, err := client.ListCollections(ctx)
		if err != nil {
			log.Fatalf("Failed to list collections: %v", err)
		}
		for _, c := range collections {
			fmt.Printf("%s\t%s\t%s\t%d file(s)\n", c.ID, c.Name, c.Status, c.FileCount)
		}
		return
	}

	files, err := client.ListCollectionFiles(ctx, *collection)
	if err != nil {
		log.Fatalf("Failed to list files: %v", err)
	}
	for _, f := range files {
		name, err := client.RetrieveFilename(ctx, f.FileID)
		if err != nil {
			name = "(unresolvable)"
		}
		fmt.Printf("%s\t%s\t%s\n", f.FileID, f.Status, name)
	}
}

func runClear(ctx context.Context, client *openai.Client, args []string) {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	collection := fs.String("collection", "", "collection id")
	fs.Parse(args)

	if *collection == "" {
		log.Fatal("clear: -collection is required")
	}

	files, err := client.ListCollectionFiles(ctx, *collection)
	if err != nil {
		log.Fatalf("Failed to list files: %v", err)
	}

	removed := 0
	for _, f := range files {
		if err := client.DetachFile(ctx, *collection, f.FileID); err != nil {
			log.Printf("failed to detach %s: %v", f.FileID, err)
			continue
		}
		removed++
	}
	fmt.Printf("detached %d file(s) from %s\n", removed, *collection)
}
