/*
Package docs renders the reference pages of the registered action types.

Every action type gets one Markdown page at `<Kind>/<type>.md` with:

  - front matter and a title,
  - the type's description,
  - a complete YAML block listing every key with its default value and its
    description as comments,
  - one `### <path>` section per key with a Type/Default/Required table,
  - one `### ${actions.<kind>.<name>.<output>}` section per output.

A `README.md` index links every page, grouped by kind. Rendering is
deterministic, so Check can detect pages that are out of date by rendering
them again.
*/
package docs
