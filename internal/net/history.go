package net

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
)

// EpochRecord is one epoch's training metrics.
type EpochRecord struct {
	Epoch     int
	TrainLoss float64
	ValLoss   float64
}

// History records per-epoch losses and can dump them as CSV for
// offline inspection.
type History struct {
	BaseCallback

	Records []EpochRecord
}

// OnEpochEnd appends the epoch's metrics.
func (h *History) OnEpochEnd(epoch int, trainLoss, valLoss float64, _ *Network) {
	h.Records = append(h.Records, EpochRecord{Epoch: epoch, TrainLoss: trainLoss, ValLoss: valLoss})
}

// WriteCSV writes the recorded history with an epoch,train_loss,
// val_loss header. A missing validation loss is written as an empty
// field.
func (h *History) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("net: create history file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"epoch", "train_loss", "val_loss"}); err != nil {
		return fmt.Errorf("net: write history header: %w", err)
	}

	for _, r := range h.Records {
		val := ""
		if !math.IsNaN(r.ValLoss) {
			val = fmt.Sprintf("%.8f", r.ValLoss)
		}
		row := []string{
			fmt.Sprintf("%d", r.Epoch+1),
			fmt.Sprintf("%.8f", r.TrainLoss),
			val,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("net: write history row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
