package garment

import (
	"image"
	"reflect"
	"testing"
)

func TestClassifyAspect(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          Category
	}{
		{"ratio 2.0", 100, 200, Dresses},
		{"ratio 1.5", 100, 150, Tops},
		{"ratio 0.5", 200, 100, Bottoms},
		{"ratio 1.0", 100, 100, Tops},
		{"exactly 1.8", 100, 180, Tops},
		{"just above 1.8", 100, 181, Dresses},
		{"exactly 1.2", 100, 120, Tops},
		{"exactly 0.8", 100, 80, Tops},
		{"just below 0.8", 100, 79, Bottoms},
		{"zero width", 0, 100, Tops},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyAspect(tt.width, tt.height); got != tt.want {
				t.Errorf("ClassifyAspect(%d, %d): got %s, want %s", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 60, 160))
	if got := Detect(img); got != Dresses {
		t.Errorf("Detect: got %s, want dresses", got)
	}
}

func TestParseGender(t *testing.T) {
	tests := []struct {
		in      string
		want    Gender
		wantErr bool
	}{
		{"", Women, false},
		{"women", Women, false},
		{"Men", Men, false},
		{" men ", Men, false},
		{"kids", "", true},
		{"unisex", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGender(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGender(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseGender(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	women := Categories(Women)
	if !reflect.DeepEqual(women, []Category{Tops, Bottoms, Dresses, Outerwear, Shoes}) {
		t.Errorf("women: got %v", women)
	}

	men := Categories(Men)
	if !reflect.DeepEqual(men, []Category{Tops, Bottoms, Outerwear, Shoes}) {
		t.Errorf("men: got %v", men)
	}
	for _, c := range men {
		if c == Dresses {
			t.Error("men should never include dresses")
		}
	}
}

func TestCategory_Title(t *testing.T) {
	if got := Outerwear.Title(); got != "Outerwear" {
		t.Errorf("Title: got %s, want Outerwear", got)
	}
	if got := Category("").Title(); got != "" {
		t.Errorf("empty Title: got %q", got)
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{"tops", Tops, false},
		{" Shoes ", Shoes, false},
		{"OUTERWEAR", Outerwear, false},
		{"", "", true},
		{"hats", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCategory(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
