/*
Package widgets provides the built-in interactive widgets.

Each widget implements ports.Widget: it renders its prompt markup from the
prompt's customization args, echoes a submitted answer back to the reader and
summarizes the answer for analytics. Customization args are decoded into typed
configs with mapstructure after {placeholder} substitution, so authors can
reference session parameters inside labels and choices.

	reg := widgets.Default() // TextInput, NumericInput, MultipleChoiceInput, Continue
*/
package widgets
