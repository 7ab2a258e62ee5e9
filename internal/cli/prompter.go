package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/marhaven/tariffdesk/internal/model"
)

// Prompter implements the interactive terminal flow for classification
// review: present ranked candidates, let the user confirm one or supply a
// code by hand, and collect entry details.
type Prompter struct {
	writer io.Writer
	reader *bufio.Reader
}

// NewPrompter creates a prompter with the given reader and writer. Nil
// arguments default to stdin and stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// SelectCandidate shows the ranked candidates for a query and returns the
// one the user picks. The user can also enter a code manually when none of
// the suggestions fit.
func (p *Prompter) SelectCandidate(ctx context.Context, query string, candidates []model.MatchCandidate) (model.MatchCandidate, error) {
	select {
	case <-ctx.Done():
		return model.MatchCandidate{}, ctx.Err()
	default:
	}

	content := p.formatCandidates(candidates)
	if _, err := fmt.Fprintln(p.writer, RenderBox(fmt.Sprintf("Matches for %q", query), content)); err != nil {
		return model.MatchCandidate{}, fmt.Errorf("failed to write candidate box: %w", err)
	}

	valid := make([]string, 0, len(candidates)+1)
	for i := range candidates {
		valid = append(valid, strconv.Itoa(i+1))
	}
	valid = append(valid, "m")

	if _, err := fmt.Fprintf(p.writer, "  [1-%d] Use that classification\n  [M] Enter an HTS code manually\n\n", len(candidates)); err != nil {
		return model.MatchCandidate{}, fmt.Errorf("failed to write options: %w", err)
	}

	choice, err := p.promptChoice(ctx, "Choice", valid)
	if err != nil {
		return model.MatchCandidate{}, err
	}

	if choice == "m" {
		code, err := p.PromptLine(ctx, "HTS code")
		if err != nil {
			return model.MatchCandidate{}, err
		}
		if _, err := fmt.Fprintln(p.writer, FormatInfo("Using manually entered code "+code)); err != nil {
			return model.MatchCandidate{}, fmt.Errorf("failed to write confirmation: %w", err)
		}
		return model.MatchCandidate{Code: code, Description: query}, nil
	}

	idx, _ := strconv.Atoi(choice)
	return candidates[idx-1], nil
}

// PromptLine asks for one non-empty line of input.
func (p *Prompter) PromptLine(ctx context.Context, label string) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return "", fmt.Errorf("input terminated")
			}
			return "", err
		}

		line := strings.TrimSpace(input)
		if line == "" {
			if _, err := fmt.Fprintln(p.writer, FormatError("Input cannot be empty. Please try again.")); err != nil {
				return "", err
			}
			continue
		}
		return line, nil
	}
}

// PromptValue asks for a non-negative numeric value.
func (p *Prompter) PromptValue(ctx context.Context, label string) (float64, error) {
	for {
		line, err := p.PromptLine(ctx, label)
		if err != nil {
			return 0, err
		}

		v, err := strconv.ParseFloat(strings.TrimPrefix(line, "$"), 64)
		if err != nil || v < 0 {
			if _, err := fmt.Fprintln(p.writer, FormatError("Enter a non-negative number.")); err != nil {
				return 0, err
			}
			continue
		}
		return v, nil
	}
}

// ShowRateSet prints the aggregated rates with per-source provenance.
func (p *Prompter) ShowRateSet(set *model.RateSet) {
	if set.Status != "success" {
		fmt.Fprintln(p.writer, FormatWarning(set.Status))
	}

	var b strings.Builder
	for _, src := range set.Sources {
		mark := FormatSuccess(fmt.Sprintf("%-20s %6.2f%%", src.Name, src.Rate))
		if !src.Succeeded {
			mark = FormatWarning(fmt.Sprintf("%-20s unavailable (%s)", src.Name, src.Note))
		}
		b.WriteString(mark)
		b.WriteString("\n")
	}
	b.WriteString(BoldStyle.Render(fmt.Sprintf("%-20s %6.2f%%", "Total", set.TotalRate())))

	fmt.Fprintln(p.writer, RenderBox(fmt.Sprintf("Rates for %s (%s)", set.Code, set.Country), b.String()))
}

// ShowBreakdown prints the itemized duty and fee calculation.
func (p *Prompter) ShowBreakdown(item model.DutyLineItem) {
	rows := []struct {
		label  string
		amount float64
	}{
		{"Entered value", item.EnteredValue},
		{"Basic duty", item.BasicDuty},
		{"Section 301 duty", item.TradeRemedyDuty},
		{"Other duty", item.OtherDuty},
		{"Total duty", item.TotalDuty()},
		{"Merchandise Processing Fee", item.MerchandiseFee},
		{"Harbor Maintenance Fee", item.HarborFee},
		{"Total other fees", item.TotalOtherFees()},
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%-28s $%s\n", row.label, model.Amount(row.amount)))
	}
	b.WriteString(BoldStyle.Render(fmt.Sprintf("%-28s $%s", "Total payable", model.Amount(item.TotalPayable()))))

	fmt.Fprintln(p.writer, RenderBox("Duty & Fees", b.String()))
}

func (p *Prompter) formatCandidates(candidates []model.MatchCandidate) string {
	var b strings.Builder
	for i, c := range candidates {
		b.WriteString(fmt.Sprintf("%s %s  %s\n", BoldStyle.Render(fmt.Sprintf("[%d]", i+1)), c.Code, c.Description))
		b.WriteString(SubtleStyle.Render(fmt.Sprintf("    base rate %.1f%%  similarity %.3f", c.BaseRate, c.Score)))
		if i < len(candidates)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (p *Prompter) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if _, err := fmt.Fprintf(p.writer, "%s: ", FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return "", fmt.Errorf("input terminated")
			}
			return "", err
		}

		choice := strings.ToLower(strings.TrimSpace(input))
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Invalid choice. Please try again.")); err != nil {
			return "", err
		}
	}
}
