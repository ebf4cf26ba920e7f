package mcpserver

// BlockFormatContract describes the page block format that LLM consumers
// should follow when adding or editing blocks.
const BlockFormatContract = `# WebCraft Block Format Contract

A page is an ordered list of blocks. Every block has three fields:

` + "```" + `json
{"id": "4f0c...", "blockType": "hero", "content": "{\"headline\":\"Hello\"}"}
` + "```" + `

- ` + "`" + `id` + "`" + ` is assigned by the server and is unique within a page.
- ` + "`" + `blockType` + "`" + ` is one of the six types below.
- ` + "`" + `content` + "`" + ` is a JSON object **serialized as a string**. Unknown keys are
  ignored and missing keys are treated as empty.

## Block types

| Type | Fields |
|------|--------|
| hero | headline, subheadline, buttonLabel, buttonUrl, backgroundImage |
| text | heading, body |
| image | src, alt, caption |
| button | label, url, variant (primary, secondary or outline) |
| columns | leftHeading, leftBody, rightHeading, rightBody |
| footer | companyName, tagline, copyright |

All field values are strings.

## Rules

1. Add blocks with the ` + "`" + `add_block` + "`" + ` tool. New blocks start with the type's
   default content and are appended to the end of the page.
2. Replace content with ` + "`" + `update_block` + "`" + `. Send the full object: fields you
   omit are cleared.
3. A ` + "`" + `button` + "`" + ` variant outside the three listed values renders as primary.
4. Images must be uploaded first with ` + "`" + `upload_asset` + "`" + `. Use the returned
   ` + "`" + `url` + "`" + ` (always ` + "`" + `/assets/<filename>` + "`" + `) as the image ` + "`" + `src` + "`" + ` or hero
   ` + "`" + `backgroundImage` + "`" + `.
5. Supported image formats: png, jpg, jpeg, gif, webp.

## Example

` + "```" + `json
[
  {"id": "a", "blockType": "hero", "content": "{\"headline\":\"Fresh coffee daily\",\"subheadline\":\"Roasted in the neighbourhood\",\"buttonLabel\":\"Visit us\",\"buttonUrl\":\"#map\",\"backgroundImage\":\"/assets/beans.jpg\"}"},
  {"id": "b", "blockType": "columns", "content": "{\"leftHeading\":\"Espresso\",\"leftBody\":\"Single origin\",\"rightHeading\":\"Pastries\",\"rightBody\":\"Baked at dawn\"}"},
  {"id": "c", "blockType": "footer", "content": "{\"companyName\":\"Corner Coffee\",\"tagline\":\"See you tomorrow\",\"copyright\":\"© 2026 Corner Coffee\"}"}
]
` + "```" + `
`
