package agent

import (
	"bytes"
	"encoding/json"
	"text/template"

	"github.com/codefionn/aifm/internal/fs"
)

const promptTemplate = `You are a helpful file management assistant. You can help users:
1. Create files and folders
2. Delete files and folders
3. List directory contents
4. Create project structures from code descriptions
5. Organize files

CURRENT CONTEXT:
- Working directory: {{ .WorkingDirectory }}
- Current directory: {{ .CurrentPath }}
- Current files: {{ .Files }}
{{- if .Selected }}
- Selected items: {{ .Selected }}
{{- end }}

USER REQUEST: "{{ .UserInput }}"

IMPORTANT: Always respond with valid JSON in this exact format:
{
    "type": "create|delete|list|structure|info",
    "message": "A friendly conversational response explaining what you're doing",
    "action": {
        "operation": "create_file|create_folder|delete|create_structure|list",
        "targets": ["filename.ext"] or ["foldername/"],
        "content": "file content if creating a file",
        "structure": {},
        "basePath": "optional folder, relative to the current directory, for create_structure"
    }
}
Leave out "action" when nothing on disk has to change. Paths are relative to the working directory.

EXAMPLES:

For "Create a new file called test.txt":
{
    "type": "create",
    "message": "I'll create a new file called test.txt for you!",
    "action": {
        "operation": "create_file",
        "targets": ["test.txt"],
        "content": ""
    }
}

For "Create a React project structure":
{
    "type": "structure",
    "message": "I'll create a complete React project structure with all the essential folders and files!",
    "action": {
        "operation": "create_structure",
        "structure": {
            "src": {
                "components": {},
                "utils": {},
                "styles": {}
            },
            "public": {},
            "package.json": "{\n  \"name\": \"react-app\",\n  \"version\": \"1.0.0\"\n}",
            "README.md": "# React Project"
        }
    }
}

For "Create a folder called New Project":
{
    "type": "create",
    "message": "I'll create a new folder called 'New Project' for you!",
    "action": {
        "operation": "create_folder",
        "targets": ["New Project"]
    }
}

RESPOND ONLY WITH VALID JSON. NO ADDITIONAL TEXT.`

var promptTmpl = template.Must(template.New("prompt").Parse(promptTemplate))

type promptData struct {
	WorkingDirectory string
	CurrentPath      string
	Files            string
	Selected         string
	UserInput        string
}

// BuildPrompt renders the instruction prompt for one chat message. At most
// maxEntries listing entries are embedded.
func BuildPrompt(userInput, workingDir, currentPath string, files []fs.FileEntry, selected []string, maxEntries int) (string, error) {
	if currentPath == "" {
		currentPath = "root"
	}
	if maxEntries > 0 && len(files) > maxEntries {
		files = files[:maxEntries]
	}
	if files == nil {
		files = []fs.FileEntry{}
	}

	filesJSON, err := json.Marshal(files)
	if err != nil {
		return "", err
	}

	data := promptData{
		WorkingDirectory: workingDir,
		CurrentPath:      currentPath,
		Files:            string(filesJSON),
		UserInput:        userInput,
	}
	if len(selected) > 0 {
		sel, err := json.Marshal(selected)
		if err != nil {
			return "", err
		}
		data.Selected = string(sel)
	}

	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
