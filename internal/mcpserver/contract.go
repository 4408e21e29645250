package mcpserver

// NotebookFormatContract describes the notebook document and the note
// fields that LLM consumers work with through the tools.
const NotebookFormatContract = `# Quill Notebook Format

A notebook is one UTF-8 JSON document: an array of note objects, written
with two-space indentation. An empty notebook is ` + "`[]`" + `.

## Note object

Every note has exactly these six string keys, in this order:

| Key            | Meaning                                              |
|----------------|------------------------------------------------------|
| ` + "`title`" + `        | Short display name. Duplicates are allowed.          |
| ` + "`text`" + `         | Free text. Leading/trailing whitespace is trimmed.   |
| ` + "`code snippet`" + ` | Source code. Leading/trailing whitespace is trimmed. |
| ` + "`link`" + `         | Any string; not validated as a URL.                  |
| ` + "`tags`" + `         | One free-form string; never split into a list.       |
| ` + "`meta`" + `         | Set by Quill: ` + "`Edited on YYYY-MM-DD HH:MM:SS`" + `.       |

Missing keys read as empty strings and unknown keys are ignored. A value
that is not a string (including ` + "`null`" + `) makes the whole document invalid.

## Working with notes

- Notes are addressed by the ` + "`id`" + ` returned from ` + "`list_notes`" + `. IDs are
  assigned when a notebook is opened and are not stored in the file, so
  list again after ` + "`open_notebook`" + `.
- ` + "`create_note`" + ` appends a note. The tool argument for the code snippet
  is ` + "`code_snippet`" + `.
- ` + "`edit_note`" + ` changes only the arguments you pass and keeps the note's
  position. ` + "`meta`" + ` is always restamped.
- Changes stay in memory until ` + "`save_notebook`" + ` rewrites the whole file.

## Example

` + "```" + `json
[
  {
    "title": "Reverse a slice",
    "text": "In-place, two indices.",
    "code snippet": "for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {\n\ts[i], s[j] = s[j], s[i]\n}",
    "link": "https://go.dev/wiki/SliceTricks",
    "tags": "go slices",
    "meta": "Edited on 2024-01-01 12:00:00"
  }
]
` + "```" + `
`
