package layout

import (
	"image"
	"testing"
)

func TestInset(t *testing.T) {
	got := Inset(image.Rect(0, 0, 100, 50), 10)
	if want := image.Rect(10, 10, 90, 40); got != want {
		t.Fatalf("Inset = %v, want %v", got, want)
	}
	if got := Inset(image.Rect(0, 0, 10, 10), 0); got != image.Rect(0, 0, 10, 10) {
		t.Fatalf("zero padding changed rect: %v", got)
	}
}

func TestSplits(t *testing.T) {
	r := image.Rect(0, 0, 100, 80)
	top, bottom := SplitHorizontal(r, 60)
	if top != image.Rect(0, 0, 100, 60) || bottom != image.Rect(0, 60, 100, 80) {
		t.Fatalf("SplitHorizontal = %v %v", top, bottom)
	}
	left, right := SplitVertical(r, 500)
	if left != r || !right.Empty() {
		t.Fatalf("SplitVertical clamp = %v %v", left, right)
	}
}

func TestAnchorBottomRight(t *testing.T) {
	got := AnchorBottomRight(image.Rect(10, 10, 110, 60), 20, 30)
	if want := image.Rect(90, 30, 110, 60); got != want {
		t.Fatalf("AnchorBottomRight = %v, want %v", got, want)
	}
}

func TestFitAspect(t *testing.T) {
	tests := []struct {
		rect   image.Rectangle
		aw, ah int
		want   image.Rectangle
	}{
		{image.Rect(0, 0, 200, 200), 16, 9, image.Rect(0, 44, 200, 156)},
		{image.Rect(0, 0, 200, 100), 1, 1, image.Rect(50, 0, 150, 100)},
		{image.Rect(10, 10, 110, 110), 1, 1, image.Rect(10, 10, 110, 110)},
	}
	for _, tt := range tests {
		if got := FitAspect(tt.rect, tt.aw, tt.ah); got != tt.want {
			t.Fatalf("FitAspect(%v, %d:%d) = %v, want %v", tt.rect, tt.aw, tt.ah, got, tt.want)
		}
	}
	if got := FitAspect(image.Rect(0, 0, 10, 10), 0, 5); !got.Empty() {
		t.Fatalf("degenerate aspect = %v", got)
	}
}
