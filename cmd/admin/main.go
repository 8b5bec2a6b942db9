package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"aitutor/internal/config"
	"aitutor/internal/database"
	"aitutor/internal/logger"
	"aitutor/internal/models"
	"aitutor/internal/repository"
	"aitutor/internal/security"
	"aitutor/internal/service"
	"aitutor/internal/supabase"
)

const seedPassword = "testpassword123"

// seedAccounts are the demo accounts created by the seed command
var seedAccounts = []struct {
	email string
	name  string
	role  models.Role
}{
	{email: "parent@test.com", name: "Test Parent", role: models.RoleParent},
	{email: "child@test.com", name: "Test Child", role: models.RoleChild},
}

func main() {
	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)

	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	switch os.Args[1] {
	case "seed":
		_ = seedCmd.Parse(os.Args[2:])
		err = handleSeed(ctx, cfg, log)
	case "export":
		_ = exportCmd.Parse(os.Args[2:])
		err = handleExport(ctx, cfg, log, *exportOutput)
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Error("Command failed", "command", os.Args[1], "error", err.Error())
		os.Exit(1)
	}
}

func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if _, err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// handleSeed creates the demo parent and learner accounts. Accounts that
// already exist are reported and skipped.
func handleSeed(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if cfg.UsesSupabase() {
		client, err := supabase.NewClient(log, cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceRoleKey, cfg.SupabaseTimeout)
		if err != nil {
			return err
		}
		provider := supabase.NewAuthProvider(client, cfg.SupabaseJWTSecret)
		for _, a := range seedAccounts {
			if _, err := provider.AdminCreateUser(ctx, a.email, seedPassword, a.name, a.role); err != nil {
				log.Warn("Skipping seed account", "email", a.email, "error", err.Error())
				continue
			}
			log.Info("Seed account created", "email", a.email, "role", string(a.role))
		}
		return nil
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	provider := repository.NewAuthProvider(repository.NewUserRepository(db), security.NewTokenSigner(cfg.JWTSecret, "aitutor"), cfg.SessionDuration)
	for _, a := range seedAccounts {
		session, err := provider.SignUp(ctx, a.email, seedPassword, a.role)
		if err != nil {
			log.Warn("Skipping seed account", "email", a.email, "error", err.Error())
			continue
		}
		if err := provider.SignOut(ctx, session.AccessToken); err != nil {
			log.Warn("Failed to end seed session", "email", a.email, "error", err.Error())
		}
		log.Info("Seed account created", "email", a.email, "role", string(a.role))
	}
	fmt.Printf("Seeded accounts use the password %q\n", seedPassword)
	return nil
}

func handleExport(ctx context.Context, cfg *config.Config, log *logger.Logger, outputPath string) error {
	if cfg.UsesSupabase() {
		return fmt.Errorf("export is only available for the self-hosted database")
	}

	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	backupService := service.NewBackupService(log, repository.NewUserRepository(db), repository.Stores(db), cfg.DatabaseType)

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := backupService.WriteExport(ctx, file); err != nil {
		return err
	}

	fmt.Printf("Export completed: %s\n", outputPath)
	return nil
}

func printUsage() {
	fmt.Println("AI Tutor Admin Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  admin seed                    Create the demo parent and learner accounts")
	fmt.Println("  admin export [-output FILE]   Export the database to JSON")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  admin seed")
	fmt.Println("  admin export -output backups/aitutor.json")
}
