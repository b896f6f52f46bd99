package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Clark-Hu/movie-review/internal/auth"
	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/service"
)

// seedFile is the YAML layout accepted by the seed command.
type seedFile struct {
	Movies []seedMovie `yaml:"movies"`
}

type seedMovie struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	ReleaseDate string   `yaml:"releaseDate"`
	Genre       string   `yaml:"genre"`
	Director    string   `yaml:"director"`
	Cast        []string `yaml:"cast"`
	PosterURL   string   `yaml:"posterUrl"`
	TrailerURL  string   `yaml:"trailerUrl"`
}

func (m seedMovie) input() service.MovieInput {
	return service.MovieInput{
		Title:       m.Title,
		Description: m.Description,
		ReleaseDate: m.ReleaseDate,
		Genre:       m.Genre,
		Director:    m.Director,
		Cast:        m.Cast,
		PosterURL:   m.PosterURL,
		TrailerURL:  m.TrailerURL,
	}
}

func parseSeed(r io.Reader) ([]seedMovie, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f seedFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return f.Movies, nil
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import movies from a YAML file",
		Long: `Import movies from a YAML file with a top-level "movies" list.

Movies whose title already exists are skipped; any other invalid entry
aborts the import.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			movies, err := parseSeed(f)
			if err != nil {
				return err
			}

			s, ctx, cancel, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer cancel()
			defer s.Close()

			added, skipped := 0, 0
			for i, m := range movies {
				if _, err := s.svc.Movies.Add(ctx, auth.Operator(), m.input()); err != nil {
					if errors.Is(err, domain.ErrConflict) {
						skipped++
						s.logger.Printf("seed: skip existing %q", m.Title)
						continue
					}
					return fmt.Errorf("movie %d (%q): %w", i+1, m.Title, err)
				}
				added++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d movies, skipped %d\n", added, skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "YAML file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
