// Package config resolves the tool settings of actionref.
//
// Settings come from four layers, highest precedence first: command-line
// flags, `ACTIONREF_*` environment variables, an `actionref.yaml` file in the
// project root (or the file named by -config), and built-in defaults. The
// layering is done with viper; validation of the resolved values is left to
// app.NewConfig.
package config
