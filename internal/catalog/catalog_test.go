package catalog

import "testing"

func TestModelsFor_KnownProvider(t *testing.T) {
	models := ModelsFor("azure_openai")

	expected := []string{"azure_openai:gpt-5-nano", "gpt-5", "gpt-5-mini"}
	if len(models) != len(expected) {
		t.Fatalf("Expected %d models, got %d: %v", len(expected), len(models), models)
	}
	for i, m := range expected {
		if models[i] != m {
			t.Errorf("Expected model[%d] = %q, got %q", i, m, models[i])
		}
	}
}

func TestModelsFor_UnknownProvider(t *testing.T) {
	models := ModelsFor("unknown_provider")
	if models == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(models) != 0 {
		t.Errorf("Expected empty list for unknown provider, got %v", models)
	}
}

func TestModelsFor_ReturnsCopy(t *testing.T) {
	models := ModelsFor("google")
	if len(models) == 0 {
		t.Fatal("Expected google models")
	}
	models[0] = "mutated"

	again := ModelsFor("google")
	if again[0] == "mutated" {
		t.Error("ModelsFor should return a copy, not the backing slice")
	}
}

func TestModelAllowed(t *testing.T) {
	if !ModelAllowed("google", "gemini-pro") {
		t.Error("gemini-pro should be allowed for google")
	}
	if ModelAllowed("google", "gpt-5") {
		t.Error("gpt-5 should not be allowed for google")
	}
	if ModelAllowed("unknown_provider", "gpt-5") {
		t.Error("No model should be allowed for an unknown provider")
	}
}

func TestIsTool(t *testing.T) {
	for _, name := range []string{"web_search", "code_interpreter", "postgres_query_tool", "mongo_query_tool", "mysql_query_tool"} {
		if !IsTool(name) {
			t.Errorf("Expected %q to be a catalogue tool", name)
		}
	}
	if IsTool("rm_rf_tool") {
		t.Error("Unknown tool name should not be in the catalogue")
	}
}

func TestSpec_Fields(t *testing.T) {
	spec := Spec()

	for _, field := range []string{"model_provider", "model", "temperature", "prompt", "tools", "database_type"} {
		if _, ok := spec[field]; !ok {
			t.Errorf("Spec missing field %q", field)
		}
	}

	temp := spec["temperature"]
	if temp.Min == nil || *temp.Min != 0.0 {
		t.Error("temperature min should be 0.0")
	}
	if temp.Max == nil || *temp.Max != 1.0 {
		t.Error("temperature max should be 1.0")
	}

	model := spec["model"]
	if len(model.ChoicesByProvider["anthropic"]) != 2 {
		t.Errorf("Expected 2 anthropic models, got %v", model.ChoicesByProvider["anthropic"])
	}
}
