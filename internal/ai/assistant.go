// Package ai holds the contracts for the external text-generation
// collaborator and its Gemini implementation. The rest of the application
// depends only on the Assistant interface; every method degrades into an
// error the caller can surface, never into fabricated output.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"dragonspend/internal/core"
)

// Suggestion is the structured reading of a free-form expense phrase.
type Suggestion struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    core.Category   `json:"category"`
}

// Insights is the advisor's reading of one month of categorized spending.
type Insights struct {
	Summary       string `json:"summary"`
	TopCategories string `json:"topCategories"`
	SpendingTips  string `json:"spendingTips"`
}

type Assistant interface {
	// CategorizeExpense parses a natural-language expense phrase into a
	// description, an amount and one of the selectable categories.
	CategorizeExpense(ctx context.Context, text string) (Suggestion, error)
	// SummarizeSpending narrates the given daily and monthly totals.
	SummarizeSpending(ctx context.Context, daily, monthly decimal.Decimal) (string, error)
	// SpendingInsights analyzes a monthly category breakdown.
	SpendingInsights(ctx context.Context, items []core.BreakdownItem) (Insights, error)
}

// Gemini implements Assistant against the Gemini API with constrained JSON
// responses.
type Gemini struct {
	client *genai.Client
	model  string
}

var _ Assistant = (*Gemini)(nil)

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ai: missing API key")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("ai: missing model name")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("ai: create client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) CategorizeExpense(ctx context.Context, text string) (Suggestion, error) {
	if strings.TrimSpace(text) == "" {
		return Suggestion{}, errors.New("ai: empty expense text")
	}

	categories := make([]string, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		categories = append(categories, string(c))
	}

	prompt := fmt.Sprintf(`Parse the following expense text. Extract the description, the numerical amount, and categorize it into one of the following: %s.

The currency is Rupees (Rs.), even if not explicitly mentioned.

Expense Text: %s

Return a JSON object with the extracted description, amount, and category.`,
		strings.Join(categories, ", "), text)

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"description": {Type: genai.TypeString},
			"amount":      {Type: genai.TypeNumber},
			"category":    {Type: genai.TypeString, Enum: categories},
		},
		Required: []string{"description", "amount", "category"},
	}

	var parsed struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
	}
	if err := g.generateJSON(ctx, prompt, schema, &parsed); err != nil {
		return Suggestion{}, err
	}

	category, ok := core.ParseCategory(parsed.Category)
	if !ok || !category.Selectable() {
		category = core.CategoryMiscellaneous
	}
	return Suggestion{
		Description: parsed.Description,
		Amount:      decimal.NewFromFloat(parsed.Amount),
		Category:    category,
	}, nil
}

func (g *Gemini) SummarizeSpending(ctx context.Context, daily, monthly decimal.Decimal) (string, error) {
	prompt := fmt.Sprintf(`Summarize the user's spending habits based on the following information:

Daily Spending: %s
Monthly Spending: %s

Provide a concise summary of their spending habits.`, daily.String(), monthly.String())

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString},
		},
		Required: []string{"summary"},
	}

	var parsed struct {
		Summary string `json:"summary"`
	}
	if err := g.generateJSON(ctx, prompt, schema, &parsed); err != nil {
		return "", err
	}
	return parsed.Summary, nil
}

func (g *Gemini) SpendingInsights(ctx context.Context, items []core.BreakdownItem) (Insights, error) {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%s: %s\n", item.Category, item.TotalAmount.String())
	}

	prompt := fmt.Sprintf(`You are a personal finance advisor providing insights into monthly spending.

Analyze the user's monthly spending data and provide a summary of their spending, highlight the categories with the highest spending, and offer personalized tips for reducing expenses.

Monthly Spending Data:
%s
Respond in a format that is easy to read and understand.`, b.String())

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary":       {Type: genai.TypeString},
			"topCategories": {Type: genai.TypeString},
			"spendingTips":  {Type: genai.TypeString},
		},
		Required: []string{"summary", "topCategories", "spendingTips"},
	}

	var parsed Insights
	if err := g.generateJSON(ctx, prompt, schema, &parsed); err != nil {
		return Insights{}, err
	}
	return parsed, nil
}

// generateJSON runs one constrained generation and decodes the first
// candidate's text into out.
func (g *Gemini) generateJSON(ctx context.Context, prompt string, schema *genai.Schema, out any) error {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return fmt.Errorf("ai: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return errors.New("ai: empty response")
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("ai: decode response %q: %w", text, err)
	}
	return nil
}
