package view

import "github.com/nibzard/todolist-go/internal/todo"

// DefaultOptionLabel is the label of the placeholder user option.
const DefaultOptionLabel = "Select user"

// Option is one entry of the user select.
type Option struct {
	Value int
	Label string
}

// UserSelect is the owner selection control. Option 0 is the placeholder and
// is never removed.
type UserSelect struct {
	options  []Option
	selected int
}

// NewUserSelect creates a select holding only the placeholder option.
func NewUserSelect() *UserSelect {
	return &UserSelect{options: []Option{{Value: 0, Label: DefaultOptionLabel}}}
}

// RenderUserOptions appends one option per user after the existing ones.
func (s *UserSelect) RenderUserOptions(users []todo.User) {
	for _, u := range users {
		s.options = append(s.options, Option{Value: u.ID, Label: u.Name})
	}
}

// Options returns a copy of all options, placeholder first.
func (s *UserSelect) Options() []Option {
	out := make([]Option, len(s.options))
	copy(out, s.options)
	return out
}

// Len returns the number of options including the placeholder.
func (s *UserSelect) Len() int {
	return len(s.options)
}

// Select moves the selection to position i. Out of range positions are
// ignored.
func (s *UserSelect) Select(i int) bool {
	if i < 0 || i >= len(s.options) {
		return false
	}
	s.selected = i
	return true
}

// SelectValue selects the first option whose value equals id.
func (s *UserSelect) SelectValue(id int) bool {
	for i, o := range s.options {
		if i > 0 && o.Value == id {
			s.selected = i
			return true
		}
	}
	return false
}

// Next moves to the following option, wrapping around.
func (s *UserSelect) Next() {
	s.selected = (s.selected + 1) % len(s.options)
}

// Prev moves to the previous option, wrapping around.
func (s *UserSelect) Prev() {
	s.selected = (s.selected - 1 + len(s.options)) % len(s.options)
}

// Selected returns the selected option.
func (s *UserSelect) Selected() Option {
	return s.options[s.selected]
}

// SelectedIndex returns the position of the selected option.
func (s *UserSelect) SelectedIndex() int {
	return s.selected
}

// DefaultSelected reports whether the placeholder is selected.
func (s *UserSelect) DefaultSelected() bool {
	return s.selected == 0
}

// Form holds the new-task title input.
type Form struct {
	input []rune
}

// NewForm creates an empty form.
func NewForm() *Form {
	return &Form{}
}

// SetInput replaces the input text.
func (f *Form) SetInput(s string) {
	f.input = []rune(s)
}

// Type appends runes to the input.
func (f *Form) Type(r ...rune) {
	f.input = append(f.input, r...)
}

// Backspace removes the last rune.
func (f *Form) Backspace() {
	if len(f.input) > 0 {
		f.input = f.input[:len(f.input)-1]
	}
}

// Clear empties the input.
func (f *Form) Clear() {
	f.input = nil
}

// Value returns the input text.
func (f *Form) Value() string {
	return string(f.input)
}
