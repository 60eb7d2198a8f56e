package gemini_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/llm/gemini"
)

func TestSession_GenerateContent(t *testing.T) {
	var cfgs []gemini.ModelConfig
	var sent [][]genai.Part

	client := gemini.NewWithChat(func(cfg gemini.ModelConfig) gemini.ChatFunc {
		cfgs = append(cfgs, cfg)
		return func(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
			sent = append(sent, parts)
			return &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []genai.Part{
						genai.Text("calling"),
						genai.FunctionCall{Name: "move", Args: map[string]any{"direction": "left"}},
					}},
				}},
				UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 8, CandidatesTokenCount: 4},
			}, nil
		}
	}, gemini.WithModel("test-model"))

	ctx := context.Background()
	session, err := client.NewSession(ctx,
		planlib.WithSessionSystemPrompt("navigate"),
		planlib.WithSessionTools(planlib.ToolSpec{
			Name:       "move",
			Parameters: map[string]*planlib.Parameter{"direction": {Type: planlib.TypeString, Enum: []string{"left", "right"}}},
			Required:   []string{"direction"},
		}),
		planlib.WithSessionTemperature(1),
	)
	gt.NoError(t, err)

	resp, err := session.GenerateContent(ctx, planlib.Text("go"), planlib.FunctionResponse{Name: "look", Data: map[string]any{"tile": "F"}})
	gt.NoError(t, err)
	gt.Equal(t, resp.Texts, []string{"calling"})
	gt.A(t, resp.FunctionCalls).Length(1).
		At(0, func(t testing.TB, v *planlib.FunctionCall) {
			gt.Equal(t, v.Name, "move")
			gt.Equal(t, v.Arguments, map[string]any{"direction": "left"})
			gt.N(t, len(v.ID)).Greater(0)
		})
	gt.Equal(t, resp.InputToken, 8)
	gt.Equal(t, resp.OutputToken, 4)

	gt.A(t, cfgs).Length(1)
	gt.Equal(t, cfgs[0].Model, "test-model")
	gt.Equal(t, cfgs[0].System, "navigate")
	gt.Equal(t, *cfgs[0].Temperature, float32(1))
	gt.False(t, cfgs[0].JSONMode)
	gt.A(t, cfgs[0].Tools).Length(1)
	gt.Equal(t, cfgs[0].Tools[0].FunctionDeclarations[0].Parameters.Properties["direction"].Enum, []string{"left", "right"})

	gt.A(t, sent[0]).Length(2)
	gt.Equal(t, sent[0][0], genai.Part(genai.Text("go")))
	gt.Equal(t, sent[0][1], genai.Part(genai.FunctionResponse{Name: "look", Response: map[string]any{"tile": "F"}}))
}

func TestSession_Error(t *testing.T) {
	errAPI := errors.New("quota")
	client := gemini.NewWithChat(func(cfg gemini.ModelConfig) gemini.ChatFunc {
		return func(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
			return nil, errAPI
		}
	})

	session, err := client.NewSession(context.Background(), planlib.WithSessionContentType(planlib.ContentTypeJSON))
	gt.NoError(t, err)
	_, err = session.GenerateContent(context.Background(), planlib.Text("x"))
	gt.True(t, errors.Is(err, errAPI))
}

func TestConvertResponse_Empty(t *testing.T) {
	resp := gemini.ConvertResponse(&genai.GenerateContentResponse{})
	gt.False(t, resp.HasData())
	gt.False(t, gemini.ConvertResponse(nil).HasData())
}

func TestConvertTools_Nested(t *testing.T) {
	tools := gemini.ConvertTools([]planlib.ToolSpec{{
		Name: "plan",
		Parameters: map[string]*planlib.Parameter{
			"subtasks": {Type: planlib.TypeArray, Items: &planlib.Parameter{Type: planlib.TypeObject, Properties: map[string]*planlib.Parameter{
				"inputs": {Type: planlib.TypeString},
			}, Required: []string{"inputs"}}},
		},
	}})

	items := tools[0].FunctionDeclarations[0].Parameters.Properties["subtasks"].Items
	gt.Equal(t, items.Type, genai.TypeObject)
	gt.Equal(t, items.Required, []string{"inputs"})
	gt.Equal(t, items.Properties["inputs"].Type, genai.TypeString)
}

func TestGeminiContentGenerate(t *testing.T) {
	projectID, ok := os.LookupEnv("TEST_GCP_PROJECT_ID")
	if !ok {
		t.Skip("TEST_GCP_PROJECT_ID is not set")
	}
	location, ok := os.LookupEnv("TEST_GCP_LOCATION")
	if !ok {
		t.Skip("TEST_GCP_LOCATION is not set")
	}

	ctx := context.Background()
	client, err := gemini.New(ctx, projectID, location)
	gt.NoError(t, err)
	defer func() { gt.NoError(t, client.Close()) }()

	answer, err := planlib.Ask(ctx, client, "Say hello in one word")
	gt.NoError(t, err)
	gt.N(t, len(answer)).Greater(0)
}
