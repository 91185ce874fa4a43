package filter

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/agentoven/agentoven/control-plane/internal/signal"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// typeMismatchCount counts samples dropped because a numeric comparator
// (lt/le/gt/ge) was evaluated against a non-numeric Value or Target. A
// mismatch is not an error: the sample just doesn't satisfy the
// condition.
var typeMismatchCount atomic.Int64

// TypeMismatchCount returns the number of samples dropped so far for a
// numeric-comparator type mismatch.
func TypeMismatchCount() int64 {
	return typeMismatchCount.Load()
}

// numericOperator reports whether op compares Value/Target as numbers,
// i.e. routes through asFloat and so is subject to a type mismatch.
func numericOperator(op models.Operator) bool {
	switch op {
	case models.OpLt, models.OpLe, models.OpGt, models.OpGe:
		return true
	default:
		return false
	}
}

// extractPath delegates to the signal package's dotted-path walker.
func extractPath(decoded map[string]interface{}, path string) (interface{}, bool) {
	return signal.ExtractPath(decoded, path)
}

// predicateEnv is the expr evaluation environment: Value is the sample
// field extracted at Condition.Operand.PayloadPath, Target is the
// condition's literal comparison operand. Both arrive as strings; numeric
// operators parse them with asFloat inside the compiled expression.
type predicateEnv struct {
	Value  string
	Target string
}

func asFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// compileProgram turns a Condition's operator into an expr-lang/expr
// program once per filter. The program is
// re-run against a fresh predicateEnv for every sample instead of being
// recompiled, keeping HandleSample on the hot path allocation-light.
func compileProgram(cond *models.Condition) (*vm.Program, error) {
	var src string
	switch cond.Operator {
	case models.OpEq:
		src = "Value == Target"
	case models.OpNeq:
		src = "Value != Target"
	case models.OpLt:
		src = "asFloat(Value) < asFloat(Target)"
	case models.OpLe:
		src = "asFloat(Value) <= asFloat(Target)"
	case models.OpGt:
		src = "asFloat(Value) > asFloat(Target)"
	case models.OpGe:
		src = "asFloat(Value) >= asFloat(Target)"
	case models.OpContains:
		src = "contains(Value, Target)"
	default:
		return nil, fmt.Errorf("unknown operator %q", cond.Operator)
	}

	return expr.Compile(src,
		expr.Env(predicateEnv{}),
		expr.Function("asFloat", func(params ...interface{}) (interface{}, error) {
			f, _ := asFloat(params[0].(string))
			return f, nil
		}, new(func(string) float64)),
		expr.Function("contains", func(params ...interface{}) (interface{}, error) {
			return strings.Contains(params[0].(string), params[1].(string)), nil
		}, new(func(string, string) bool)),
	)
}

// evaluate extracts the operand's payload path from decoded and runs
// program against it. A missing path evaluates false rather than erroring:
// a sample that doesn't carry the field simply doesn't satisfy the
// condition yet. For a numeric comparator, a Value or Target that doesn't
// parse as a number is also not an error — the sample is dropped and
// typeMismatchCount is incremented instead of silently coercing to 0.
func evaluate(program *vm.Program, cond *models.Condition, decoded map[string]interface{}) (bool, error) {
	raw, ok := extractPath(decoded, cond.Operand.PayloadPath)
	if !ok {
		return false, nil
	}

	value := fmt.Sprint(raw)
	if numericOperator(cond.Operator) {
		if _, ok := asFloat(value); !ok {
			typeMismatchCount.Add(1)
			return false, nil
		}
		if _, ok := asFloat(cond.TargetValue); !ok {
			typeMismatchCount.Add(1)
			return false, nil
		}
	}

	out, err := expr.Run(program, predicateEnv{
		Value:  value,
		Target: cond.TargetValue,
	})
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	return ok && b, nil
}
