package graph

// BuiltinQA returns the reference acceptance-test workflow: a linear chain
// of nine browser-driven phases plus a terminal end node, connected by
// SUCCESS edges only. A FAILURE outcome therefore has no continuation and
// halts the run.
func BuiltinQA() *Graph {
	nodes := []*Node{
		{
			ID:          "authentication_1",
			Type:        TypeAuthentication,
			Phase:       "Authentication",
			Description: "Initialize the browser and log into the platform",
			Actions:     []string{"initialize_browser", "execute_authentication_phase"},
		},
		{
			ID:          "requirements_2",
			Type:        TypeRequirements,
			Phase:       "Discovery",
			Description: "Answer all requirement-gathering questions automatically",
			Reads:       []string{"authentication_1"},
			Actions:     []string{"answer_all_questions"},
		},
		{
			ID:          "discovery_validation_3",
			Type:        TypeDiscovery,
			Phase:       "Discovery",
			Description: "Open and validate the discovery document",
			Reads:       []string{"requirements_2"},
			Actions:     []string{"validate_discovery_document"},
		},
		{
			ID:          "wireframes_validation_4",
			Type:        TypeWireframes,
			Phase:       "Wireframe",
			Description: "View and validate the wireframes",
			Reads:       []string{"discovery_validation_3"},
			Actions:     []string{"validate_wireframes"},
		},
		{
			ID:          "design_validation_5",
			Type:        TypeDesign,
			Phase:       "Specification",
			Description: "View and validate the design document",
			Reads:       []string{"wireframes_validation_4"},
			Actions:     []string{"validate_design_document"},
		},
		{
			ID:          "build_process_6",
			Type:        TypeBuild,
			Phase:       "Build",
			Description: "Monitor the application build process",
			Reads:       []string{"design_validation_5"},
			Actions:     []string{"monitor_build_process"},
		},
		{
			ID:          "test_validation_7",
			Type:        TypeTest,
			Phase:       "Test",
			Description: "Open and validate the test plan document",
			Reads:       []string{"build_process_6"},
			Actions:     []string{"validate_test_document"},
		},
		{
			ID:          "preview_app_8",
			Type:        TypePreview,
			Phase:       "Preview",
			Description: "Open the application preview and validate functionality",
			Reads:       []string{"test_validation_7"},
			Actions:     []string{"validate_app_preview"},
		},
		{
			ID:          "final_confirmation_9",
			Type:        TypeFinal,
			Phase:       "Deploy",
			Description: "Perform final confirmation and verify deployment",
			Reads:       []string{"preview_app_8"},
			Actions:     []string{"final_confirmation"},
		},
		{
			ID:          "end_workflow",
			Type:        TypeEnd,
			Phase:       "Deploy",
			Description: "Acceptance workflow completed",
			Reads:       []string{"final_confirmation_9"},
		},
	}

	edges := []Edge{
		{Source: "authentication_1", Target: "requirements_2", Label: LabelSuccess},
		{Source: "requirements_2", Target: "discovery_validation_3", Label: LabelSuccess},
		{Source: "discovery_validation_3", Target: "wireframes_validation_4", Label: LabelSuccess},
		{Source: "wireframes_validation_4", Target: "design_validation_5", Label: LabelSuccess},
		{Source: "design_validation_5", Target: "build_process_6", Label: LabelSuccess},
		{Source: "build_process_6", Target: "test_validation_7", Label: LabelSuccess},
		{Source: "test_validation_7", Target: "preview_app_8", Label: LabelSuccess},
		{Source: "preview_app_8", Target: "final_confirmation_9", Label: LabelSuccess},
		{Source: "final_confirmation_9", Target: "end_workflow", Label: LabelSuccess},
	}

	g, err := New(nodes, edges)
	if err != nil {
		// The builtin graph is static; failing to build it is a programmer error.
		panic(err)
	}
	return g
}
