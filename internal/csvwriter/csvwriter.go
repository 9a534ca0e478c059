package csvwriter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
)

// Write skriver én tabellfil: headerrad først, så radene i gitt
// rekkefølge. Filen skrives én gang på slutten av en kjøring – ved fatale
// feil skal den aldri kalles, så vi etterlater ingen korrupt fil.
func Write(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("kunne ikke opprette %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Klarte ikke å lukke CSV-filen", "file", path, "error", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("kunne ikke skrive header til %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("kunne ikke skrive rad til %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("kunne ikke fullføre %s: %w", path, err)
	}

	slog.Info("Lagret CSV", "file", path, "rader", len(rows))
	return nil
}
