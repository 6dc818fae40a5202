package handlers

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Lumicake/LumiAgent/internal/domain"
)

func (h *Handlers) textDataTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		tool("search_in_file", "Find lines in a file containing a substring.", domain.CategoryTextData, domain.RiskLow,
			map[string]domain.ParamSchema{
				"path":  requiredParam("string", "file to search"),
				"query": requiredParam("string", "substring to find"),
			}, h.searchInFile),
		tool("calculate", "Evaluate a simple arithmetic expression.", domain.CategoryTextData, domain.RiskLow,
			map[string]domain.ParamSchema{"expression": requiredParam("string", "arithmetic expression, e.g. 2 + 2 * 3")}, h.calculate),
		tool("parse_json", "Extract a value from a JSON document by path.", domain.CategoryTextData, domain.RiskLow,
			map[string]domain.ParamSchema{
				"json": requiredParam("string", "JSON document"),
				"path": requiredParam("string", "gjson-style path, e.g. user.name"),
			}, h.parseJSON),
		tool("encode_base64", "Base64-encode a UTF-8 string.", domain.CategoryTextData, domain.RiskLow,
			map[string]domain.ParamSchema{"text": requiredParam("string", "text to encode")}, h.encodeBase64),
		tool("decode_base64", "Decode a base64 string back to UTF-8 text.", domain.CategoryTextData, domain.RiskLow,
			map[string]domain.ParamSchema{"text": requiredParam("string", "base64 text to decode")}, h.decodeBase64),
		tool("replace_in_file", "Replace all occurrences of a substring in a file.", domain.CategoryTextData, domain.RiskMedium,
			map[string]domain.ParamSchema{
				"path":        requiredParam("string", "file to edit"),
				"find":        requiredParam("string", "substring to find"),
				"replacement": requiredParam("string", "replacement text"),
			}, h.replaceInFile),
	}
}

func (h *Handlers) searchInFile(ctx context.Context, args map[string]string) (string, error) {
	path, err := requireArg(args, "path")
	if err != nil {
		return "", err
	}
	query, err := requireArg(args, "query")
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return errString("failed to open %s: %v", path, err)
	}
	defer f.Close()

	var hits []string
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if strings.Contains(scanner.Text(), query) {
			hits = append(hits, fmt.Sprintf("%d: %s", lineNo, scanner.Text()))
		}
	}
	if err := scanner.Err(); err != nil {
		return errString("failed to scan %s: %v", path, err)
	}
	return strings.Join(hits, "\n"), nil
}

// calculate supports + - * / and parentheses over floating point numbers.
func (h *Handlers) calculate(ctx context.Context, args map[string]string) (string, error) {
	expr, err := requireArg(args, "expression")
	if err != nil {
		return "", err
	}
	result, err := evalArithmetic(expr)
	if err != nil {
		return errString("failed to evaluate %q: %v", expr, err)
	}
	return strconv.FormatFloat(result, 'g', -1, 64), nil
}

func (h *Handlers) parseJSON(ctx context.Context, args map[string]string) (string, error) {
	doc, err := requireArg(args, "json")
	if err != nil {
		return "", err
	}
	path, err := requireArg(args, "path")
	if err != nil {
		return "", err
	}
	result := gjson.Get(doc, path)
	if !result.Exists() {
		return errString("path %q not found in document", path)
	}
	return result.String(), nil
}

func (h *Handlers) encodeBase64(ctx context.Context, args map[string]string) (string, error) {
	text := args["text"]
	return base64.StdEncoding.EncodeToString([]byte(text)), nil
}

func (h *Handlers) decodeBase64(ctx context.Context, args map[string]string) (string, error) {
	text, err := requireArg(args, "text")
	if err != nil {
		return "", err
	}
	decoded, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return errString("failed to decode base64: %v", err)
	}
	return string(decoded), nil
}

func (h *Handlers) replaceInFile(ctx context.Context, args map[string]string) (string, error) {
	path, err := requireArg(args, "path")
	if err != nil {
		return "", err
	}
	find, err := requireArg(args, "find")
	if err != nil {
		return "", err
	}
	replacement := args["replacement"]

	data, err := os.ReadFile(path)
	if err != nil {
		return errString("failed to read %s: %v", path, err)
	}
	updated := strings.ReplaceAll(string(data), find, replacement)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return errString("failed to write %s: %v", path, err)
	}
	return fmt.Sprintf("replaced occurrences of %q in %s", find, path), nil
}
