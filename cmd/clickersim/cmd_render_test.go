package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderCmdFromArchiveDir(t *testing.T) {
	archive := writeFixtureArchive(t)
	dir := t.TempDir()
	outPath := filepath.Join(dir, "chart.html")
	csvPath := filepath.Join(dir, "points.csv")

	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newRenderCmd())
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"render", filepath.Dir(archive), "--out", outPath, "--csv", csvPath})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	html, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !strings.Contains(string(html), "echarts") || !strings.Contains(string(html), "cheapest") {
		t.Fatalf("chart missing expected content")
	}

	csv, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	if lines[0] != "series,time,total" {
		t.Fatalf("csv header = %q", lines[0])
	}
	if len(lines) < 2 {
		t.Fatalf("csv carries no points")
	}
}

func TestRenderCmdRequiresInput(t *testing.T) {
	rootCmd := newTestRootCmd()
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"render"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected an error when no inputs are given")
	}
}

func TestBuildSeriesDisambiguatesNames(t *testing.T) {
	inputs := []renderInput{
		{Strategy: "cheapest", RunID: "aaaaaaaa-1111"},
		{Strategy: "cheapest", RunID: "bbbbbbbb-2222"},
		{Strategy: "ratio-min", RunID: "cccccccc-3333"},
	}
	series := buildSeries(inputs)
	if series[0].Name != "cheapest (aaaaaaaa)" || series[1].Name != "cheapest (bbbbbbbb)" {
		t.Fatalf("duplicate strategies must carry run ids: %q, %q", series[0].Name, series[1].Name)
	}
	if series[2].Name != "ratio-min" {
		t.Fatalf("unique strategy should keep its bare name: %q", series[2].Name)
	}
}
