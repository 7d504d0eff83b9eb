package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

const DefaultModel = "gemini-2.5-flash"

var (
	ErrEmptyResponse  = errors.New("empty response from model")
	ErrMoveOutOfRange = errors.New("model move is out of range")
)

const systemInstructionTemplate = `You are playing Tic-Tac-Toe. You are player %s.
The board is a 3x3 grid represented by indices 0-8.
The current board state is provided where numbers are empty spots and X/O are occupied.

Your goal is to win, or draw if winning is impossible.
Block the opponent if they are about to win.

You must also provide a short, witty, slightly sassy comment (max 10 words) about your move.`

// contentGenerator is the part of *genai.Models the client needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	models contentGenerator
	model  string
}

// New creates the process-wide Gemini client.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return newClient(client.Models, model), nil
}

func newClient(models contentGenerator, model string) *Client {
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		models: models,
		model:  model,
	}
}

type moveReply struct {
	Move    *int   `json:"move"`
	Comment string `json:"comment"`
}

// SuggestMove asks the model for a cell index and a comment.
func (that *Client) SuggestMove(ctx context.Context, board entity.Board, aiMark string) (entity.MoveResult, error) {
	prompt := fmt.Sprintf("Current board state: [ %s ]. Pick the best available index number to place your '%s'.",
		FormatBoard(board), aiMark)

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(fmt.Sprintf(systemInstructionTemplate, aiMark), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    moveSchema(),
	}

	response, err := that.models.GenerateContent(ctx, that.model, genai.Text(prompt), config)
	if err != nil {
		return entity.MoveResult{}, fmt.Errorf("failed to generate content: %w", err)
	}

	return ParseMoveReply(response.Text())
}

// ParseMoveReply decodes the structured model output.
func ParseMoveReply(text string) (entity.MoveResult, error) {
	if strings.TrimSpace(text) == "" {
		return entity.MoveResult{}, ErrEmptyResponse
	}

	var reply moveReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return entity.MoveResult{}, fmt.Errorf("failed to unmarshal model reply: %w", err)
	}

	if reply.Move == nil {
		return entity.MoveResult{}, fmt.Errorf("%w: move is missing", ErrEmptyResponse)
	}

	if *reply.Move < 0 || *reply.Move >= entity.BoardSize {
		return entity.MoveResult{}, fmt.Errorf("%w: %d", ErrMoveOutOfRange, *reply.Move)
	}

	return entity.MoveResult{
		Index:   *reply.Move,
		Comment: reply.Comment,
	}, nil
}

// FormatBoard renders occupied cells as their mark and empty cells as their index.
func FormatBoard(board entity.Board) string {
	cells := make([]string, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			cells[i] = strconv.Itoa(i)
			continue
		}
		cells[i] = cell
	}

	return strings.Join(cells, " | ")
}

func moveSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"move": {
				Type:        genai.TypeInteger,
				Description: "The index (0-8) of the cell to place your mark.",
			},
			"comment": {
				Type:        genai.TypeString,
				Description: "A short, witty comment about the move.",
			},
		},
		Required: []string{"move", "comment"},
	}
}
