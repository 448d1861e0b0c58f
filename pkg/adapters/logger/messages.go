package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Creating %s from %d files":       "%[2]d ファイルから %[1]s を作成中",
		"Completed %s in %s":              "%s が %s で完了しました",
		"Classifying %d files into %s":    "%d ファイルを %s に分類中",
		"Created merged file %s in %s":    "結合ファイル %s を %s で作成しました",
		"Created %s in %s":                "%s を %s で作成しました",
		"Gap-filling %s from %d rasters":  "%[2]d ラスタから %[1]s の欠損を補間中",
		"Skipping %s, all products exist": "%s はすべて作成済みのためスキップします",
		"Interrupted, shutting down...":   "中断されました。シャットダウン中...",
		"Processing site %s":              "サイト %s を処理中",

		// Executor
		"Pipeline file: %s":             "パイプラインファイル: %s",
		"pdal %s exited with status %d": "pdal %s が終了コード %d で終了しました",

		// Warnings
		"Failed to remove cutline %s: %s":       "カットラインファイル %s を削除できません: %s",
		"Failed to remove pipeline file %s: %s": "パイプラインファイル %s を削除できません: %s",
		"Failed to remove merged file %s: %s":   "結合ファイル %s を削除できません: %s",
		"Failed to save debug pipeline: %s":     "デバッグ用パイプラインを保存できません: %s",

		// Errors
		"Failed to create DEMs: %s": "DEM の作成に失敗しました: %s",
		"Failed to classify: %s":    "分類に失敗しました: %s",
	})
}
