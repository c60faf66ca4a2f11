package modtree

import "testing"

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Path
		wantErr bool
	}{
		{name: "root", in: "", want: nil},
		{name: "single", in: "foo", want: Path{"foo"}},
		{name: "nested", in: "a::b::c", want: Path{"a", "b", "c"}},
		{name: "leading separator", in: "::a", wantErr: true},
		{name: "trailing separator", in: "a::", wantErr: true},
		{name: "double separator", in: "a::::b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePath(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParsePath(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if !tt.wantErr && got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestPath_Navigation(t *testing.T) {
	p := Path{"a", "b", "c"}

	if got := p.Parent().String(); got != "a::b" {
		t.Errorf("Parent() = %q, want a::b", got)
	}
	if got := p.Leaf(); got != "c" {
		t.Errorf("Leaf() = %q, want c", got)
	}
	if !Path(nil).Parent().IsRoot() || Path(nil).Leaf() != "" {
		t.Error("root should be its own parent with an empty leaf")
	}

	anc := p.Ancestors()
	want := []string{"a", "a::b", "a::b::c"}
	if len(anc) != len(want) {
		t.Fatalf("Ancestors() = %v, want %v", anc, want)
	}
	for i := range want {
		if anc[i].String() != want[i] {
			t.Errorf("Ancestors()[%d] = %q, want %q", i, anc[i], want[i])
		}
	}
}

func TestPath_ChildDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 8)
	base[0] = "m"

	x := base.Child("x")
	y := base.Child("y")
	if x.String() != "m::x" || y.String() != "m::y" {
		t.Errorf("Child shared backing storage: %v, %v", x, y)
	}

	parent := x.Parent()
	_ = append(parent, "z")
	if x.String() != "m::x" {
		t.Errorf("appending to Parent() modified the child: %v", x)
	}
}
