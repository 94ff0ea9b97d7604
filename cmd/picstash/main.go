package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"picstash/internal/app"
	"picstash/internal/config"
	"picstash/internal/picstash"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Optional .env for local overrides; absence is not an error.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
func newApp() (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "picstash",
	Short: "Photo collection manager",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Data Dir: %s\n", cfg.DataDir)
		fmt.Printf("Listen:   %s\n", cfg.Listen)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Data Dir:  %s\n", cfg.DataDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Listen:    %s\n", cfg.Listen)
		fmt.Printf("Blob Type: %s\n", cfg.Blob.Type)
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return a.Serve(ctx)
	},
}

// collection command
var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage collections",
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create ID",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Library().CreateCollection(args[0]); err != nil {
			return fmt.Errorf("creating collection: %w", err)
		}

		fmt.Printf("Created collection: %s\n", args[0])
		return nil
	},
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.Library().Collections()
		if err != nil {
			return err
		}

		if len(ids) == 0 {
			fmt.Println("No collections.")
			return nil
		}

		for _, id := range ids {
			count, err := a.Library().CountImages(id)
			if err != nil {
				return err
			}
			fmt.Printf("%-30s  %d image(s)\n", id, count)
		}
		return nil
	},
}

var collectionDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a collection and all its images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Library().DeleteCollection(args[0]); err != nil {
			return fmt.Errorf("deleting collection: %w", err)
		}

		fmt.Printf("Deleted collection: %s\n", args[0])
		return nil
	},
}

// image command
var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage images",
}

var imageAddCmd = &cobra.Command{
	Use:   "add COLLECTION FILE...",
	Short: "Add images to a collection",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		collection := args[0]
		for _, path := range args[1:] {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			img, err := a.Library().AddImage(collection, data, filepath.Base(path))
			if err != nil {
				return fmt.Errorf("adding %s: %w", path, err)
			}
			fmt.Printf("%s  %s  %dx%d\n", img.ID, img.Filename(), img.Width, img.Height)
		}
		return nil
	},
}

var imageListCmd = &cobra.Command{
	Use:   "list COLLECTION",
	Short: "List images in a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		images, err := a.Library().ListImages(args[0], picstash.ListOptions{
			Status: status,
			Limit:  limit,
		})
		if err != nil {
			return err
		}

		if len(images) == 0 {
			fmt.Println("No images found.")
			return nil
		}

		for _, img := range images {
			fmt.Printf("%s  %-10s  %-30s  %s\n",
				img.ID,
				img.Status,
				img.Filename(),
				img.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return nil
	},
}

var imageStatusCmd = &cobra.Command{
	Use:   "status COLLECTION STATUS ID...",
	Short: "Change image status (INBOX, COLLECTION, ARCHIVE)",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Library().BatchUpdateStatus(args[0], args[2:], args[1])
		if err != nil {
			return err
		}

		for _, u := range result.Updates {
			if u.Err != nil {
				fmt.Printf("%s  FAILED  %v\n", u.ImageID, u.Err)
			} else {
				fmt.Printf("%s  %s\n", u.ImageID, u.Image.Status)
			}
		}
		if failed := result.Failed(); failed > 0 {
			return fmt.Errorf("%d of %d update(s) failed", failed, len(result.Updates))
		}
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export COLLECTION NAME ID...",
	Short: "Export images as a ZIP archive",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		export, err := a.Library().ExportArchive(args[0], args[2:], args[1])
		if err != nil {
			return fmt.Errorf("exporting archive: %w", err)
		}
		defer export.Close()

		f, err := os.Create(export.Filename)
		if err != nil {
			return fmt.Errorf("creating archive file: %w", err)
		}
		defer f.Close()

		if _, err := io.Copy(f, export); err != nil {
			return fmt.Errorf("writing archive: %w", err)
		}

		fmt.Printf("Wrote %s (%d bytes)\n", export.Filename, export.Size)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// collection subcommands
	collectionCmd.AddCommand(collectionCreateCmd)
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionDeleteCmd)

	// image subcommands
	imageCmd.AddCommand(imageAddCmd)
	imageCmd.AddCommand(imageListCmd)
	imageListCmd.Flags().StringP("status", "s", "", "Filter by status (INBOX, COLLECTION, ARCHIVE)")
	imageListCmd.Flags().IntP("limit", "n", 0, "Maximum number of images to show")
	imageCmd.AddCommand(imageStatusCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(collectionCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(exportCmd)
}
