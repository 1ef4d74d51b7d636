//go:build linux

package linux

import (
	"slices"
	"testing"
)

func TestParseShellGeometry(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Geometry
		wantErr bool
	}{
		{
			name:  "full output",
			input: "WINDOW=123\nX=0\nY=0\nWIDTH=1920\nHEIGHT=1080\nSCREEN=0",
			want:  Geometry{X: 0, Y: 0, Width: 1920, Height: 1080},
		},
		{
			name:  "offset window",
			input: "WINDOW=9\nX=1920\nY=24\nWIDTH=800\nHEIGHT=600\nSCREEN=0\n",
			want:  Geometry{X: 1920, Y: 24, Width: 800, Height: 600},
		},
		{
			name:    "missing height",
			input:   "X=0\nY=0\nWIDTH=10",
			wantErr: true,
		},
		{
			name:    "bad number",
			input:   "X=a\nY=0\nWIDTH=10\nHEIGHT=10",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseShellGeometry(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseShellGeometry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseShellGeometry() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMonitorList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Geometry
		wantErr bool
	}{
		{
			name:  "single monitor",
			input: "Monitors: 1\n 0: +*eDP-1 1920/344x1080/194+0+0  eDP-1\n",
			want:  []Geometry{{X: 0, Y: 0, Width: 1920, Height: 1080}},
		},
		{
			name: "side by side",
			input: "Monitors: 2\n" +
				" 0: +*DP-1 2560/597x1440/336+0+0  DP-1\n" +
				" 1: +HDMI-1 1920/527x1080/296+2560+0  HDMI-1\n",
			want: []Geometry{
				{X: 0, Y: 0, Width: 2560, Height: 1440},
				{X: 2560, Y: 0, Width: 1920, Height: 1080},
			},
		},
		{
			name:  "stacked with offset",
			input: "Monitors: 2\n 0: +*DP-2 1920/510x1200/320+0+1080  DP-2\n 1: +DP-3 1920/510x1080/290+0+0  DP-3",
			want: []Geometry{
				{X: 0, Y: 1080, Width: 1920, Height: 1200},
				{X: 0, Y: 0, Width: 1920, Height: 1080},
			},
		},
		{
			name:    "no monitors",
			input:   "Monitors: 0\n",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonitorList(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMonitorList() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !slices.Equal(got, tt.want) {
				t.Errorf("ParseMonitorList() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
