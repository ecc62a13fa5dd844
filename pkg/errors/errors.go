// Package errors はパイプライン全体のエラーハンドリングと警告システムを提供します。
// 致命的エラーと非致命的警告を区別し、構造化されたエラー情報を提供します。
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("homeprice-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// これにより、ConvergenceWarningなどの非致命的警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告コレクター
//
// ===========================================================================

// Collector は非致命的警告を収集するための型です。
// パイプラインの各ステージが警告を登録し、呼び出し元が最終結果とともに受け取ります。
// 警告は決して破棄されません。
type Collector struct {
	mu       sync.Mutex
	warnings []error
}

// NewCollector は新しいCollectorを作成します。
func NewCollector() *Collector {
	return &Collector{}
}

// Collect は警告を記録し、グローバル警告ハンドラにも通知します。
// nilのCollectorに対して呼ばれた場合はハンドラへの通知のみ行います。
func (c *Collector) Collect(w error) {
	if w == nil {
		return
	}
	Warn(w)
	if c == nil {
		return
	}
	c.mu.Lock()
	c.warnings = append(c.warnings, w)
	c.mu.Unlock()
}

// Warnings は収集された警告のコピーを収集順で返します。
func (c *Collector) Warnings() []error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]error, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Len は収集された警告の数を返します。
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.warnings)
}

// ===========================================================================
//
//	非致命的警告型
//
// ===========================================================================

// ConvergenceWarning は最適化アルゴリズムが収束しなかった場合に発生する警告です。
// 学習結果自体は返されるため、呼び出し元が利用するかどうかを判断できます。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iter or adjusting parameters.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// UnseenCategoryWarning はエンコード時に学習時に存在しなかったカテゴリ値が
// 現れた場合に発生する警告です。該当行の指示変数は全て0になります。
type UnseenCategoryWarning struct {
	Column string
	Value  string
	Row    int
}

func (w *UnseenCategoryWarning) Error() string {
	return fmt.Sprintf("category %q in column %q at row %d was not seen during fit; indicators set to zero", w.Value, w.Column, w.Row)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UnseenCategoryWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Str("value", w.Value).
		Int("row", w.Row).
		Str("type", "UnseenCategoryWarning")
}

// NewUnseenCategoryWarning は新しいUnseenCategoryWarningを作成します。
func NewUnseenCategoryWarning(column, value string, row int) *UnseenCategoryWarning {
	return &UnseenCategoryWarning{Column: column, Value: value, Row: row}
}

// ZeroVarianceError は標準化対象の列の標準偏差が参照パーティション上で0の場合に
// 発生します。変換は該当列を0として続行されますが、条件は必ず報告されます。
type ZeroVarianceError struct {
	Column string
	Mean   float64
}

func (e *ZeroVarianceError) Error() string {
	return fmt.Sprintf("column %q has zero variance on the reference partition (mean=%g); transformed values set to 0", e.Column, e.Mean)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ZeroVarianceError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Float64("mean", e.Mean).
		Str("type", "ZeroVarianceError")
}

// NewZeroVarianceError は新しいZeroVarianceErrorを作成します。
func NewZeroVarianceError(column string, mean float64) *ZeroVarianceError {
	return &ZeroVarianceError{Column: column, Mean: mean}
}

// ===========================================================================
//
//	致命的エラー型
//
// ===========================================================================

// SchemaMismatchError は入力リレーションに必須列が欠けている、
// または列の値が型制約を満たさない場合のエラーです。
// 全てのステージの実行前に検出され、パイプライン全体を中断します。
type SchemaMismatchError struct {
	MissingColumns []string
	Column         string
	Reason         string
}

func (e *SchemaMismatchError) Error() string {
	if len(e.MissingColumns) > 0 {
		return fmt.Sprintf("homeprice: input relation is missing required columns: %s", strings.Join(e.MissingColumns, ", "))
	}
	return fmt.Sprintf("homeprice: column %q violates the input schema: %s", e.Column, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *SchemaMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Strs("missing_columns", e.MissingColumns).
		Str("column", e.Column).
		Str("reason", e.Reason).
		Str("type", "SchemaMismatchError")
}

// NewSchemaMismatchError は欠損列に対するSchemaMismatchErrorを作成し、スタックトレースを付与します。
func NewSchemaMismatchError(missing []string) error {
	err := &SchemaMismatchError{MissingColumns: missing}
	return errors.WithStack(err)
}

// NewSchemaTypeError は型制約違反に対するSchemaMismatchErrorを作成し、スタックトレースを付与します。
func NewSchemaTypeError(column, reason string) error {
	err := &SchemaMismatchError{Column: column, Reason: reason}
	return errors.WithStack(err)
}

// InsufficientDataError は分位点や交差検証の分割に必要な行数が
// 不足している場合のエラーです。
type InsufficientDataError struct {
	Op       string
	Required int
	Got      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("homeprice: %s: requires at least %d rows, got %d", e.Op, e.Required, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InsufficientDataError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("required", e.Required).
		Int("got", e.Got).
		Str("type", "InsufficientDataError")
}

// NewInsufficientDataError は新しいInsufficientDataErrorを作成し、スタックトレースを付与します。
func NewInsufficientDataError(op string, required, got int) error {
	err := &InsufficientDataError{Op: op, Required: required, Got: got}
	return errors.WithStack(err)
}

// DomainError は数学関数の定義域外の値が渡された場合のエラーです。
// 例えば、対数変換に0以下の値を渡した場合など。
type DomainError struct {
	Op    string
	Row   int
	Value float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("homeprice: %s: value %g at row %d is outside the function domain", e.Op, e.Value, e.Row)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DomainError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("row", e.Row).
		Float64("value", e.Value).
		Str("type", "DomainError")
}

// NewDomainError は新しいDomainErrorを作成し、スタックトレースを付与します。
func NewDomainError(op string, row int, value float64) error {
	err := &DomainError{Op: op, Row: row, Value: value}
	return errors.WithStack(err)
}

// SingularMatrixError は相関行列が可逆でない場合（完全な多重共線性）のエラーです。
// Featuresには共線性に関与していると推定される特徴量名が入ります。
type SingularMatrixError struct {
	Op       string
	Features []string
}

func (e *SingularMatrixError) Error() string {
	if len(e.Features) > 0 {
		return fmt.Sprintf("homeprice: %s: correlation matrix is singular; implicated features: %s", e.Op, strings.Join(e.Features, ", "))
	}
	return fmt.Sprintf("homeprice: %s: correlation matrix is singular", e.Op)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *SingularMatrixError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Strs("features", e.Features).
		Str("type", "SingularMatrixError")
}

// NewSingularMatrixError は新しいSingularMatrixErrorを作成し、スタックトレースを付与します。
func NewSingularMatrixError(op string, features []string) error {
	err := &SingularMatrixError{Op: op, Features: features}
	return errors.WithStack(err)
}

// NotFittedError はモデルが未学習の状態で `Predict` や `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("homeprice: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("homeprice: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("homeprice: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError は回帰モデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("homeprice: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("homeprice: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")
)
