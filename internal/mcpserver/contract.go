package mcpserver

// ChapterFormatContract describes the data files so LLM consumers can read
// and reason about what the tools return.
const ChapterFormatContract = `# lectio Data Format

## chapters.txt

One record per line, newline-separated. Chapter records come first:

` + "```" + `
<number>,<name>,<attended>,<missed>
` + "```" + `

followed by module groupings, each a header line and then one chapter
number per line:

` + "```" + `
Module:<module name>
<chapter number>
<chapter number>
` + "```" + `

Rules:

1. ` + "`" + `number` + "`" + ` is a unique integer and the chapter's stable id.
2. ` + "`" + `attended` + "`" + ` and ` + "`" + `missed` + "`" + ` are non-negative integers.
3. A module line refers to a chapter defined above it; unknown numbers are skipped.
4. A chapter may be listed under more than one module.
5. Absence rate is missed / (attended + missed) * 100 with two decimals,
   ` + "`" + `0.00` + "`" + ` when both counters are zero.

## notes.json

An object keyed by chapter id (the chapter number as a string). Each value is
an array of notes in creation order:

` + "```" + `json
{
  "3": [
    {
      "id": 1739647461000,
      "content": "<p>Euler tours need even degrees</p>",
      "tags": ["exam"],
      "timestamp": "2025-02-15T19:24:21Z",
      "lastEdited": "2025-02-15T19:24:21Z",
      "author": "student",
      "isEditing": false
    }
  ]
}
` + "```" + `

Note content is an HTML fragment. Use ` + "`" + `<p>` + "`" + ` for paragraphs.
`
