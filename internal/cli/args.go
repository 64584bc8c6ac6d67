package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

type ValidationError struct {
	Arg   string
	Cause string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Arg, e.Cause)
}

// Command is a parsed CLI invocation.
type Command struct {
	Name     string   // upload, ls, usage, trash, restore, purge, download
	Paths    []string // upload: local files to send
	FileID   string   // trash/restore/purge/download target
	Dest     string   // download destination path
	FolderID string   // upload: optional target folder
	Trashed  bool     // ls: list trash instead of active files
}

// ParseArgs turns raw CLI arguments into a Command, validating local
// paths for uploads up front so failures happen before any network
// call.
func ParseArgs(args []string) (*Command, error) {
	if len(args) == 0 {
		return nil, &ValidationError{Arg: "<command>", Cause: "no command provided"}
	}

	cmd := &Command{Name: args[0]}
	rest := args[1:]

	switch cmd.Name {
	case "upload":
		for i := 0; i < len(rest); i++ {
			if rest[i] == "--folder" {
				if i+1 >= len(rest) {
					return nil, &ValidationError{Arg: "--folder", Cause: "missing folder id"}
				}
				cmd.FolderID = rest[i+1]
				i++
				continue
			}
			p := filepath.Clean(rest[i])
			info, err := os.Stat(p)
			if err != nil {
				return nil, &ValidationError{Arg: rest[i], Cause: "not found or not accessible"}
			}
			if info.IsDir() {
				return nil, &ValidationError{Arg: rest[i], Cause: "directories cannot be uploaded"}
			}
			cmd.Paths = append(cmd.Paths, p)
		}
		if len(cmd.Paths) == 0 {
			return nil, &ValidationError{Arg: "<files>", Cause: "no files provided"}
		}

	case "ls":
		for _, a := range rest {
			if a == "--trash" {
				cmd.Trashed = true
			} else {
				return nil, &ValidationError{Arg: a, Cause: "unknown flag"}
			}
		}

	case "usage":
		if len(rest) != 0 {
			return nil, &ValidationError{Arg: rest[0], Cause: "usage takes no arguments"}
		}

	case "trash", "restore", "purge":
		if len(rest) != 1 {
			return nil, &ValidationError{Arg: "<id>", Cause: "exactly one file id required"}
		}
		cmd.FileID = rest[0]

	case "download":
		if len(rest) < 1 || len(rest) > 2 {
			return nil, &ValidationError{Arg: "<id> [dest]", Cause: "file id and optional destination required"}
		}
		cmd.FileID = rest[0]
		if len(rest) == 2 {
			cmd.Dest = rest[1]
		}

	default:
		return nil, &ValidationError{Arg: cmd.Name, Cause: "unknown command"}
	}

	return cmd, nil
}
