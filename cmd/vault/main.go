package main

import (
	"context"
	"fmt"
	"os"

	"zenvault/internal/cli"
)

const usageText = `vault - ZenVault command line client

Usage:
  vault upload <file...> [--folder <id>]
  vault ls [--trash]
  vault usage
  vault trash <id>
  vault restore <id>
  vault purge <id>
  vault download <id> [dest]

Environment:
  VAULT_SERVER  server base URL (default http://localhost:8080)
  VAULT_TOKEN   bearer token from the identity provider (required)
`

func main() {
	cmd, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s", err, usageText)
		os.Exit(1)
	}

	server := os.Getenv("VAULT_SERVER")
	if server == "" {
		server = "http://localhost:8080"
	}
	token := os.Getenv("VAULT_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "Error: VAULT_TOKEN is not set")
		os.Exit(1)
	}

	client := cli.NewClient(server, token)
	ctx := context.Background()

	if err := run(ctx, client, cmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *cli.Client, cmd *cli.Command) error {
	switch cmd.Name {
	case "upload":
		for _, path := range cmd.Paths {
			info, err := client.Upload(ctx, path, cmd.FolderID)
			if err != nil {
				return err
			}
			fmt.Printf("uploaded %s (%d bytes) as %s\n", info.Name, info.SizeBytes, info.ID)
		}

	case "ls":
		files, err := client.List(ctx, cmd.Trashed)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("no files")
			return nil
		}
		for _, f := range files {
			fmt.Printf("%s  %10d  %s\n", f.ID, f.SizeBytes, f.Name)
		}

	case "usage":
		u, err := client.GetUsage(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("used %s of %s (%.1f%%)\n", u.UsedHuman, u.CeilingHuman, u.UsedPercent)

	case "trash":
		info, err := client.Trash(ctx, cmd.FileID)
		if err != nil {
			return err
		}
		fmt.Printf("trashed %s\n", info.Name)

	case "restore":
		info, err := client.Restore(ctx, cmd.FileID)
		if err != nil {
			return err
		}
		fmt.Printf("restored %s\n", info.Name)

	case "purge":
		if err := client.Purge(ctx, cmd.FileID); err != nil {
			return err
		}
		fmt.Println("purged")

	case "download":
		dest := cmd.Dest
		if dest == "" {
			dest = cmd.FileID
		}
		if err := client.Download(ctx, cmd.FileID, dest); err != nil {
			return err
		}
		fmt.Printf("saved to %s\n", dest)
	}

	return nil
}
